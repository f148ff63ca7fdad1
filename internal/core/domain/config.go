package domain

import (
	"fmt"
	"strings"
)

// Model identifies the Perplexity model used for every search.
type Model string

// Available models.
const (
	// ModelSonar is the lightweight search model.
	ModelSonar Model = "sonar"

	// ModelSonarPro is the advanced search model with deeper retrieval.
	ModelSonarPro Model = "sonar-pro"
)

// Fixed completion parameters sent with every search.
const (
	DefaultMaxTokens   = 8192
	DefaultTemperature = 0.2
)

// Models returns the recognised models in display order.
func Models() []Model {
	return []Model{ModelSonar, ModelSonarPro}
}

// IsValid returns true if the model is recognised.
func (m Model) IsValid() bool {
	switch m {
	case ModelSonar, ModelSonarPro:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Model) String() string {
	return string(m)
}

// Description returns a human-readable description of the model.
func (m Model) Description() string {
	switch m {
	case ModelSonar:
		return "Sonar (fast, lightweight search)"
	case ModelSonarPro:
		return "Sonar Pro (advanced search, more citations)"
	default:
		return "Unknown"
	}
}

// ParseModel converts user input into a Model.
// It returns an error wrapping ErrInvalidModel for anything other than a recognised name.
func ParseModel(s string) (Model, error) {
	m := Model(strings.TrimSpace(s))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q (expected one of: %s)", ErrInvalidModel, s, joinModels())
	}
	return m, nil
}

func joinModels() string {
	models := Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

// ServerConfig is the process-wide configuration shared read-only by every invocation.
type ServerConfig struct {
	// Model is the Perplexity model to query.
	Model Model

	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// APIKey is the bearer credential for the search gateway.
	// An empty key is allowed; the gateway rejects the request instead.
	APIKey string
}

// NewServerConfig builds a ServerConfig with the fixed completion parameters.
// It fails when model is not recognised.
func NewServerConfig(model, apiKey string) (ServerConfig, error) {
	m, err := ParseModel(model)
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Model:       m,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		APIKey:      apiKey,
	}, nil
}

// HasAPIKey reports whether a credential is configured.
func (c ServerConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
