package testutil

// FixedRunIDGenerator generates the same run ID every time.
//
// The same scenario with the same FixedRunIDGenerator produces byte-identical
// tables and summaries, which keeps golden snapshots stable.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a new fixed run ID generator.
//
// The ID is typically set in the scenario YAML:
//
//	run_id: "run-00000000-0000-0000-0000-000000000001"
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements orchestrator.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
