package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gearbox/internal/digest"
)

// TraceSnapshot renders a result as canonical JSON for golden comparison.
//
// Board digests are left out so a golden file reads as the rotation story
// of the scenario; replay already checks digests on every run.
func TraceSnapshot(name string, result *Result) ([]byte, error) {
	records := make([]any, len(result.Records))
	for i, rec := range result.Records {
		m := digest.RecordMap(rec)
		delete(m, "digest")
		m["token"] = rec.Token
		records[i] = m
	}

	final := make([]any, len(result.Final))
	for i, s := range result.Final {
		final[i] = map[string]any{
			"id":          s.ID,
			"at":          []any{s.Position.X, s.Position.Y},
			"orientation": int(s.Orientation),
		}
	}

	return digest.MarshalCanonical(map[string]any{
		"scenario": name,
		"records":  records,
		"final":    final,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := TraceSnapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
