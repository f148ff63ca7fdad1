package domain

import (
	"strconv"
	"strings"
)

// RecencyFilter restricts search results to a publication window.
// The zero value applies no recency constraint.
type RecencyFilter string

// Available recency filters.
const (
	RecencyNone  RecencyFilter = ""
	RecencyMonth RecencyFilter = "month"
	RecencyWeek  RecencyFilter = "week"
	RecencyDay   RecencyFilter = "day"
	RecencyHour  RecencyFilter = "hour"
)

// RecencyFilters returns the filters a caller may request.
func RecencyFilters() []RecencyFilter {
	return []RecencyFilter{RecencyMonth, RecencyWeek, RecencyDay, RecencyHour}
}

// IsValid returns true for RecencyNone and the four enumerated windows.
func (f RecencyFilter) IsValid() bool {
	switch f {
	case RecencyNone, RecencyMonth, RecencyWeek, RecencyDay, RecencyHour:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f RecencyFilter) String() string {
	return string(f)
}

// ParseRecencyFilter converts caller input into a RecencyFilter.
// Unlike IsValid, an empty string is rejected: callers that send the field must name a window.
func ParseRecencyFilter(s string) (RecencyFilter, error) {
	f := RecencyFilter(s)
	if f == RecencyNone || !f.IsValid() {
		return RecencyNone, &ValidationError{
			Field:  "search_recency_filter",
			Reason: "must be one of " + joinRecencyFilters() + ", got " + strconv.Quote(s),
		}
	}
	return f, nil
}

func joinRecencyFilters() string {
	filters := RecencyFilters()
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

// SearchRequest is a single validated search invocation.
type SearchRequest struct {
	// Query is the raw text forwarded to the gateway as the user message.
	Query string

	// RecencyFilter optionally restricts results; RecencyNone means unrestricted.
	RecencyFilter RecencyFilter
}

// Validate checks the request invariants.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Reason: "must be a non-empty string"}
	}
	if !r.RecencyFilter.IsValid() {
		return &ValidationError{
			Field:  "search_recency_filter",
			Reason: "must be one of " + joinRecencyFilters() + ", got " + strconv.Quote(string(r.RecencyFilter)),
		}
	}
	return nil
}

// SearchResult is the normalised answer returned by the gateway.
type SearchResult struct {
	// Content is the answer text of the first choice.
	Content string

	// Citations lists source URLs in the order the gateway returned them.
	// It is never nil once produced by the search service.
	Citations []string
}
