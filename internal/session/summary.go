package session

import (
	"encoding/json"
	"fmt"
)

// Transcript renders the outcome log as the JSON document the summarizer
// reads. An empty log renders as an empty array.
func Transcript(log []Outcome) (string, error) {
	if log == nil {
		log = []Outcome{}
	}
	b, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}
	return string(b), nil
}
