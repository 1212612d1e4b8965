// Package harness runs YAML conformance scenarios against the operator
// registry through the in-process runtime.
//
// # Scenario Format
//
//	name: multiply_int32
//	description: "Elementwise product of two int32 vectors."
//	op: multiply
//	dtype: int32
//	processor: cpu        # optional: cpu, omp or gpu
//	shape: [3]            # optional, defaults to a vector of len(a)
//	a: ["1", "2", "3"]
//	b: ["4", "5", "6"]    # or scalar: "5" for the array-scalar variant
//	in_place: false       # write the result into a
//	expect:
//	  values: ["4", "10", "18"]
//	  # or error: SHAPE_MISMATCH
//
// Values are strings in Go literal syntax; floats accept NaN and Inf. Each
// scenario's result is snapshotted to testdata/golden/<name>.golden.
package harness
