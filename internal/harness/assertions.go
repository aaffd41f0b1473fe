package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the record summary to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Records  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\nRecords:\n")
		for i, line := range e.Records {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, line)
		}
	}
	return buf.String()
}

func evaluate(a Assertion, r *Result) error {
	switch a.Type {
	case AssertOrientation:
		return assertOrientation(a, r)
	case AssertRotations:
		return assertRotations(a, r)
	case AssertTraceOrder:
		return assertTraceOrder(a, r)
	case AssertPosition:
		return assertPosition(a, r)
	case AssertRejected:
		return assertRejected(a, r)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func fail(a Assertion, r *Result, expected, actual string) error {
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   actual,
		Records:  summarize(r),
	}
}

// summarize renders one line per record: kind, outcome and rotated gears.
func summarize(r *Result) []string {
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		line := string(rec.Kind)
		if rec.Rejected != "" {
			line += " rejected=" + rec.Rejected
		}
		if ids := rec.GearIDs(); len(ids) > 0 {
			line += " " + strings.Join(ids, ",")
		}
		out[i] = line
	}
	return out
}

func assertOrientation(a Assertion, r *Result) error {
	s, found := r.state(a.Gear)
	where := fmt.Sprintf("gear %q", a.Gear)
	if a.At != nil {
		s, found = r.stateAt(a.At.Coordinate())
		where = fmt.Sprintf("gear at %s", a.At.Coordinate())
	}
	if !found {
		return fail(a, r, fmt.Sprintf("%s with orientation %d", where, *a.Orientation), "no such gear")
	}
	if int(s.Orientation) != *a.Orientation {
		return fail(a, r,
			fmt.Sprintf("%s orientation %d", where, *a.Orientation),
			fmt.Sprintf("orientation %d", s.Orientation))
	}
	return nil
}

func assertRotations(a Assertion, r *Result) error {
	total := 0
	for _, rec := range r.Records {
		total += rec.Rotations()[a.Gear]
	}
	if total != *a.Count {
		return fail(a, r,
			fmt.Sprintf("gear %q rotated %d times", a.Gear, *a.Count),
			fmt.Sprintf("rotated %d times", total))
	}
	return nil
}

func assertTraceOrder(a Assertion, r *Result) error {
	idx := *a.Record
	if idx < 0 || idx >= len(r.Records) {
		return fail(a, r, fmt.Sprintf("record %d", idx), fmt.Sprintf("%d records", len(r.Records)))
	}
	got := r.Records[idx].GearIDs()
	if !slices.Equal(got, a.Gears) {
		return fail(a, r,
			fmt.Sprintf("record %d order [%s]", idx, strings.Join(a.Gears, ", ")),
			fmt.Sprintf("[%s]", strings.Join(got, ", ")))
	}
	return nil
}

func assertPosition(a Assertion, r *Result) error {
	want := a.At.Coordinate()
	s, ok := r.state(a.Gear)
	if !ok {
		return fail(a, r, fmt.Sprintf("gear %q at %s", a.Gear, want), "no such gear")
	}
	if s.Position != want {
		return fail(a, r, fmt.Sprintf("gear %q at %s", a.Gear, want), fmt.Sprintf("at %s", s.Position))
	}
	return nil
}

func assertRejected(a Assertion, r *Result) error {
	idx := *a.Record
	if idx < 0 || idx >= len(r.Records) {
		return fail(a, r, fmt.Sprintf("record %d rejected %s", idx, a.Reason), fmt.Sprintf("%d records", len(r.Records)))
	}
	if got := r.Records[idx].Rejected; got != a.Reason {
		if got == "" {
			got = "not rejected"
		}
		return fail(a, r, fmt.Sprintf("record %d rejected %s", idx, a.Reason), got)
	}
	return nil
}
