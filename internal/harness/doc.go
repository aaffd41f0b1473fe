// Package harness runs gearbox conformance scenarios.
//
// A scenario is a YAML file naming a layout (inline or by path), a list of
// commands and assertions over the outcome:
//
//	name: row_of_three
//	description: engine in the middle drives both neighbors
//	layout_file: ../layouts/row.yaml
//	steps:
//	  - op: tick
//	  - op: move
//	    from: [2, 0]
//	    to: [1, 0]
//	    expect_error: occupied
//	assertions:
//	  - type: trace_order
//	    record: 0
//	    gears: [motor, right, left]
//
// Scenarios run against the real engine loop with deterministic record
// tokens. Every applied record passes through an in-memory trace store, and
// the log read back from it must replay to the same final board, so a
// passing scenario also exercises the store and replay paths.
//
// Golden traces (testdata/golden/<name>.golden) pin the full record list in
// canonical JSON. Regenerate them with:
//
//	go test ./internal/harness -update
package harness
