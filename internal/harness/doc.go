// Package harness runs YAML conversion scenarios.
//
// A scenario carries a schema, a CSV input and the expected outcome: the
// JSON lines written, or the error kind the run must abort with. Scenarios
// may also list assertions over the written lines, and can be compared
// against golden snapshots under testdata/golden.
//
// Scenario format:
//
//	name: required_field_asymmetry
//	description: blank rows pass, partial rows need every required field
//	schema: |
//	  id,false,true
//	  tags,true
//	input: |
//	  id,tags
//	  "1","a/b"
//	  "",""
//	expect:
//	  output:
//	    - '{"id":"1","tags":["a","b"]}'
//	    - '{}'
//	assertions:
//	  - type: line_count
//	    count: 2
//
// Each scenario runs in isolation with logging discarded, so the same
// scenario always produces byte-identical output.
package harness
