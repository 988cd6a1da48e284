package inference

import "fmt"

// ErrInferenceExhausted is returned by Go when called a second time on
// the same Inference. Ported from entwine::Inference's single-shot
// "already run" guard.
var ErrInferenceExhausted = fmt.Errorf("inference: Go already called")

// ErrInferenceIncomplete is returned by the result accessors when
// called before Go has completed successfully.
var ErrInferenceIncomplete = fmt.Errorf("inference: result accessed before completion")

// ErrNoReadableInputs is returned when no file passed Reader.Good.
var ErrNoReadableInputs = fmt.Errorf("inference: no readable input files")

// ErrEmptyData is returned when the aggregated point count or bounds
// carry no data at all.
var ErrEmptyData = fmt.Errorf("inference: no points found in any input file")

// ErrSchemaEmpty is returned when the aggregated schema has zero stride.
var ErrSchemaEmpty = fmt.Errorf("inference: aggregated schema is empty")

// ErrInvalidScale is returned when a file's preview carries a scale
// with a zero component.
type ErrInvalidScale struct {
	Path string
}

func (e ErrInvalidScale) Error() string {
	return fmt.Sprintf("inference: %s: scale has a zero component", e.Path)
}

// ErrMissingBounds is returned during Cesium reorientation when a file
// has no bounds to transform.
type ErrMissingBounds struct {
	Path string
}

func (e ErrMissingBounds) Error() string {
	return fmt.Sprintf("inference: %s: missing bounds for reorientation", e.Path)
}
