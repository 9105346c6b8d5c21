package tutor

// Config holds generation settings for each tutoring call.
type Config struct {
	HintMaxTokens    int
	RewriteMaxTokens int
	SummaryMaxTokens int
	Temperature      float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HintMaxTokens:    512,
		RewriteMaxTokens: 256,
		SummaryMaxTokens: 512,
		Temperature:      0.4,
	}
}
