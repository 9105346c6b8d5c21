package questiongen

// Config controls refinement and seed generation.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure drops the question.
	Validators []Validator

	// SeedValidators is the chain for seed questions, which also need an
	// expected answer.
	SeedValidators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxRefinements caps how many follow-up questions are kept from one
	// synthesis call. Zero keeps all of them.
	MaxRefinements int

	// MaxSourceRunes truncates the document text sent for seed generation.
	MaxSourceRunes int
}

// DefaultConfig returns a Config with the standard validator chains and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators:     []Validator{&StructuralValidator{}},
		SeedValidators: []Validator{&StructuralValidator{RequireAnswer: true}},
		MaxTokens:      1024,
		Temperature:    0.7,
		MaxRefinements: 3,
		MaxSourceRunes: 48000,
	}
}
