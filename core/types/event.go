package types

// Event represents a typed event emitted during state transitions. Attributes
// carry the indexed payload as flat string pairs for external consumers.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
