package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a replay test scenario.
// Scenarios feed event records through the full pipeline and assert on the
// resulting plays and stored tables.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Records is an inline event file.
	Records string `yaml:"records,omitempty"`

	// Files lists event files to replay after Records.
	// Relative paths are resolved against the scenario file location.
	Files []string `yaml:"files,omitempty"`

	// Strict discards any file that reports an issue.
	Strict bool `yaml:"strict,omitempty"`

	// Plays checks individual replayed plays.
	Plays []PlayStep `yaml:"plays,omitempty"`

	// Assertions validate the trace and stored tables.
	// Supported types: trace_contains, trace_order, trace_count,
	// final_state, issue_count
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run ID for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// PlayStep checks one play by sequence number.
type PlayStep struct {
	// Game selects the game. May be omitted when the scenario replays a
	// single game.
	Game string `yaml:"game,omitempty"`

	// Seq is the play's sequence number within its game, starting at 1.
	Seq int `yaml:"seq"`

	// Expect contains expected event columns.
	// This is a subset match - only specified columns are validated.
	Expect map[string]interface{} `yaml:"expect"`
}

// Assertion validates the trace or stored state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a play of a kind appears with fields
	// - "trace_order": Check play kinds appear in order
	// - "trace_count": Check a play kind appears exactly N times
	// - "final_state": Query table and verify expected values
	// - "issue_count": Check a run summary total
	Type string `yaml:"type"`

	// Kind is the play kind (used by trace_contains, trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Fields are the expected event columns (used by trace_contains).
	// Subset match - only specified fields are validated.
	Fields map[string]interface{} `yaml:"fields,omitempty"`

	// Table is the table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences (used by trace_count,
	// issue_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected kind order (used by trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Issue names a summary total (used by issue_count).
	Issue string `yaml:"issue,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertIssueCount    = "issue_count"
)

// LoadScenario reads and parses a scenario YAML file. Relative file paths
// are resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving event file paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario parses scenario YAML. File paths are resolved against
// basePath when it is not empty.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths BEFORE validation
	for i, p := range scenario.Files {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Files[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Records == "" && len(s.Files) == 0 {
		return fmt.Errorf("records or files is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range s.Files {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("event file not found: %s", p)
		}
	}

	for i, step := range s.Plays {
		if step.Seq < 1 {
			return fmt.Errorf("plays[%d]: seq must be at least 1", i)
		}
		if len(step.Expect) == 0 {
			return fmt.Errorf("plays[%d]: expect is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" && len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: kind or fields is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertIssueCount:
		if !slices.Contains(issueNames, a.Issue) {
			return fmt.Errorf("assertions[%d]: issue must be one of %v, got %q", index, issueNames, a.Issue)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q (must be trace_contains, trace_order, trace_count, final_state, or issue_count)", index, a.Type)
	}

	return nil
}
