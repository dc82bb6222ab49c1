package testutil

// FixedTraceIDs returns the same trace id every time.
//
// CLI responses carry a per-run trace id; tests inject this generator so that
// JSON output is byte-stable.
//
// Thread-safety: FixedTraceIDs is stateless and safe for concurrent use.
type FixedTraceIDs struct {
	id string
}

// NewFixedTraceIDs creates a fixed trace id generator.
// If id is empty, Generate returns "test-trace-default".
func NewFixedTraceIDs(id string) *FixedTraceIDs {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceIDs{id: id}
}

// Generate returns the fixed trace id.
func (g *FixedTraceIDs) Generate() string {
	return g.id
}
