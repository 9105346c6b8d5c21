package questiongen

import "github.com/abhisek/stepwise/internal/llm"

// SeedSchema defines the JSON schema for seed question generation responses.
var SeedSchema = &llm.Schema{
	Name:        "seed-questions",
	Description: "Question and answer pairs assessing the key concepts of a document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "A specific question ending with a question mark, understandable without having read the text",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "A short answer using only information stated in the text",
						},
					},
					"required":             []any{"question", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
