// Package metrics is a stub: legacy cyclomatic/Halstead-style metric
// calculators are out of scope for this pipeline. A caller that wires one
// in by mistake gets a clear error instead of silent nothing.
package metrics

import "errors"

// Unsupported reports that metric calculation was requested but this
// module does not implement it.
func Unsupported() error {
	return errors.New("metrics: not implemented — out of scope for the CPG pipeline")
}
