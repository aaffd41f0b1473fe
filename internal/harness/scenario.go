package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gearbox/internal/board"
	"github.com/roach88/gearbox/internal/layout"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layout is an inline layout document. Exactly one of Layout and
	// LayoutFile must be set.
	Layout map[string]any `yaml:"layout,omitempty"`

	// LayoutFile is a layout path, relative to the scenario file.
	LayoutFile string `yaml:"layout_file,omitempty"`

	// TokenPrefix seeds record tokens ("<prefix>-1", ...). Defaults to Name.
	TokenPrefix string `yaml:"token_prefix,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the records and the final board.
	Assertions []Assertion `yaml:"assertions"`
}

// Point is an [x, y] pair.
type Point [2]int

// Coordinate converts p to a board coordinate.
func (p Point) Coordinate() board.Coordinate { return board.At(p[0], p[1]) }

// Step is one command.
type Step struct {
	// Op is tick, move or turn.
	Op string `yaml:"op"`

	// Repeat applies the command this many times. Defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`

	From *Point `yaml:"from,omitempty"` // move
	To   *Point `yaml:"to,omitempty"`   // move
	At   *Point `yaml:"at,omitempty"`   // turn

	// Clockwise is the turn direction. Defaults to true.
	Clockwise *bool `yaml:"clockwise,omitempty"`

	// ExpectError is the error code the command must fail with: NO_GEAR,
	// PERMANENT, occupied or out_of_bounds. Empty means it must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates records or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "orientation": gear (or at) has the given orientation
	// - "rotations": gear rotated count times over the whole scenario
	// - "trace_order": record's rotations touched gears in this order
	// - "position": gear ended at the given cell
	// - "rejected": record was refused with reason
	Type string `yaml:"type"`

	Gear        string   `yaml:"gear,omitempty"`
	At          *Point   `yaml:"at,omitempty"`
	Record      *int     `yaml:"record,omitempty"`
	Orientation *int     `yaml:"orientation,omitempty"`
	Count       *int     `yaml:"count,omitempty"`
	Gears       []string `yaml:"gears,omitempty"`
	Reason      string   `yaml:"reason,omitempty"`
}

// Assertion type constants.
const (
	AssertOrientation = "orientation"
	AssertRotations   = "rotations"
	AssertTraceOrder  = "trace_order"
	AssertPosition    = "position"
	AssertRejected    = "rejected"
)

// Step op constants.
const (
	OpTick = "tick"
	OpMove = "move"
	OpTurn = "turn"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative layout_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.LayoutFile != "" && !filepath.IsAbs(scenario.LayoutFile) {
		scenario.LayoutFile = filepath.Join(filepath.Dir(path), scenario.LayoutFile)
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", s.Name, prev, name)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Document returns the scenario's layout.
func (s *Scenario) Document() (*layout.Document, error) {
	if s.LayoutFile != "" {
		return layout.Load(s.LayoutFile)
	}
	return layout.FromValue(s.Layout)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Layout == nil) == (s.LayoutFile == "") {
		return fmt.Errorf("exactly one of layout and layout_file is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Repeat < 0 {
		return fmt.Errorf("repeat must not be negative")
	}
	switch step.Op {
	case OpTick:
	case OpMove:
		if step.From == nil || step.To == nil {
			return fmt.Errorf("move requires from and to")
		}
	case OpTurn:
		if step.At == nil {
			return fmt.Errorf("turn requires at")
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertOrientation:
		if a.Gear == "" && a.At == nil {
			return fmt.Errorf("orientation requires gear or at")
		}
		if a.Orientation == nil {
			return fmt.Errorf("orientation requires orientation")
		}
	case AssertRotations:
		if a.Gear == "" || a.Count == nil {
			return fmt.Errorf("rotations requires gear and count")
		}
	case AssertTraceOrder:
		if a.Record == nil {
			return fmt.Errorf("trace_order requires record")
		}
	case AssertPosition:
		if a.Gear == "" || a.At == nil {
			return fmt.Errorf("position requires gear and at")
		}
	case AssertRejected:
		if a.Record == nil || a.Reason == "" {
			return fmt.Errorf("rejected requires record and reason")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
