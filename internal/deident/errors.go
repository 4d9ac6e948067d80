package deident

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// FieldError reports that one tag could not be transformed. It is recovered
// locally: the field is left untouched, the error lands in the file's
// statistics, and the rest of the file is still processed.
type FieldError struct {
	Tag    tag.Tag
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag (%04X,%04X): %s", e.Tag.Group, e.Tag.Element, e.Reason)
}

// RecordError reports that one file could not be fully processed, including
// I/O failures. It is recovered at the batch level: counted, recorded, and
// the batch continues.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
