package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepwise/internal/document"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Generate seed questions from documents",
	Long: "Generate seed questions from documents and print them as JSON. " +
		"The output can be passed to `stepwise quiz` or POSTed to /api/sessions.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		output, _ := cmd.Flags().GetString("output")

		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		ctx := cmd.Context()
		eng, err := openEngine(ctx, cmd, log)
		if err != nil {
			return err
		}
		defer eng.Close()

		docs, err := parseDocuments(args)
		if err != nil {
			return err
		}
		seeds, err := eng.seeds.FromDocuments(ctx, docs, chunkConfigFlags(cmd), count)
		if err != nil {
			return fmt.Errorf("generate seeds: %w", err)
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(seeds); err != nil {
			return fmt.Errorf("write seeds: %w", err)
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d questions to %s\n", len(seeds), output)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntP("count", "n", 3, "Number of seed questions to generate")
	ingestCmd.Flags().StringP("output", "o", "", "Write JSON to this file instead of stdout")
	ingestCmd.Flags().Int("chunk-size", 0, "Retrieval chunk size in tokens (0 uses the default)")
	ingestCmd.Flags().Int("chunk-overlap", -1, "Retrieval chunk overlap in tokens (-1 uses the default)")
}

// chunkConfigFlags reads the chunking flags. Unset values are normalized to
// the defaults by the chunker.
func chunkConfigFlags(cmd *cobra.Command) document.ChunkConfig {
	size, _ := cmd.Flags().GetInt("chunk-size")
	overlap, _ := cmd.Flags().GetInt("chunk-overlap")
	return document.ChunkConfig{Size: size, Overlap: overlap}
}
