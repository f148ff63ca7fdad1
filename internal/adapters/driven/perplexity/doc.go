// Package perplexity provides the search gateway adapter for the
// Perplexity chat-completions API.
//
// The client issues exactly one POST per search and classifies every
// failure to obtain an answer as *domain.UpstreamError.
package perplexity
