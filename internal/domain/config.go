package domain

// ModelConfig is the typed generation model configuration.
type ModelConfig struct {
	Model           string
	MaxOutputTokens int
	Temperature     float32
}
