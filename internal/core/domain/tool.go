package domain

// SearchToolName is the name under which the search capability is advertised.
const SearchToolName = "search"

// ToolDescriptor describes a callable tool advertised during discovery.
type ToolDescriptor struct {
	// Name is the identifier callers use to invoke the tool.
	Name string

	// Description is shown to the assistant to decide when to call the tool.
	Description string

	// InputSchema is a JSON Schema object describing the accepted arguments.
	InputSchema map[string]any
}
