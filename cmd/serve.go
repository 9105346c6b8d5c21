package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhisek/stepwise/internal/api"
	"github.com/abhisek/stepwise/internal/config"
	"github.com/abhisek/stepwise/internal/ranking"
	"github.com/abhisek/stepwise/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := openEngine(ctx, cmd, log)
		if err != nil {
			return err
		}
		defer eng.Close()

		rank, err := openRanking(ctx, cfg, eng, log)
		if err != nil {
			return err
		}
		defer rank.close()

		sessions := session.NewMemoryStore(cfg.SessionTTL)
		go sessions.Run(ctx, cfg.SweepInterval, func(removed int) {
			log.Info("expired idle sessions", "removed", removed)
		})

		srv := api.NewServer(api.Deps{
			Sessions:    eng.orchestrator(sessions, rank.reporter, cfg.RewriteAnswers, log),
			Seeds:       eng.seeds,
			Rewriter:    eng.tutor,
			Leaderboard: rank.leaderboard,
		}, log, cfg)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 180 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			log.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting stepwise", "port", cfg.Port, "session_ttl", cfg.SessionTTL.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

// rankingBackends holds the configured points sinks and the leaderboard
// the API reads from.
type rankingBackends struct {
	reporter    ranking.Reporter
	leaderboard ranking.Leaderboard
	closers     []func()
}

func (r *rankingBackends) close() {
	for _, c := range r.closers {
		c()
	}
}

// openRanking always records points in the local ledger and mirrors them to
// Redis and MongoDB when configured. The leaderboard is served from Redis
// first, then MongoDB, then the ledger.
func openRanking(ctx context.Context, cfg config.Config, eng *engine, log *slog.Logger) (*rankingBackends, error) {
	ledger := ranking.NewLedger(eng.store.EventRepo())
	reporters := ranking.Multi{ledger}
	var board ranking.Leaderboard = ledger
	r := &rankingBackends{}

	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		r.closers = append(r.closers, func() { client.Disconnect(context.Background()) })

		mr := ranking.NewMongoRanking(client.Database(cfg.MongoDatabase).Collection("courses"))
		reporters = append(reporters, mr)
		board = mr
		log.Info("mongodb rankings enabled", "database", cfg.MongoDatabase)
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			r.close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			r.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		r.closers = append(r.closers, func() { client.Close() })

		rl := ranking.NewRedisLeaderboard(client)
		reporters = append(reporters, rl)
		board = rl
		log.Info("redis leaderboard enabled", "addr", opt.Addr)
	}

	r.reporter = reporters
	r.leaderboard = board
	return r, nil
}
