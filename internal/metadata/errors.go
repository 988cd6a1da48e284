package metadata

import "fmt"

// ErrMetadataInvalid signals a missing AssembleParams field. Assemble
// raises it only for a nil Manifest; no other field is checked.
type ErrMetadataInvalid struct {
	Reason string
}

func (e ErrMetadataInvalid) Error() string {
	return fmt.Sprintf("metadata: invalid assembly parameters: %s", e.Reason)
}
