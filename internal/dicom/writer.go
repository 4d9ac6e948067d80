package dicom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SetString sets a string value for a tag, inserting the element if the
// dataset does not already carry it.
func (d *Dataset) SetString(t tag.Tag, value string) error {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		// Not present yet, insert with the dictionary VR.
		newElem, err := NewStringElement(t, value)
		if err != nil {
			return fmt.Errorf("could not create element %v: %w", t, err)
		}
		d.Data.Elements = append(d.Data.Elements, newElem)
		return nil
	}

	newValue, err := dicom.NewValue([]string{value})
	if err != nil {
		return fmt.Errorf("could not create value: %w", err)
	}

	newElem := &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    elem.ValueRepresentation,
		RawValueRepresentation: elem.RawValueRepresentation,
		ValueLength:            uint32(len(value)),
		Value:                  newValue,
	}

	for i, e := range d.Data.Elements {
		if e.Tag == t {
			d.Data.Elements[i] = newElem
			break
		}
	}
	return nil
}

// NewStringElement builds a string-valued element with the dictionary VR
// for the tag, falling back to LO for tags outside the dictionary.
func NewStringElement(t tag.Tag, value string) (*dicom.Element, error) {
	vrStr := "LO"
	if info, err := tag.Find(t); err == nil && info.VR != "" {
		vrStr = info.VR
	}

	newValue, err := dicom.NewValue([]string{value})
	if err != nil {
		return nil, fmt.Errorf("could not create value: %w", err)
	}

	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, vrStr),
		RawValueRepresentation: vrStr,
		ValueLength:            uint32(len(value)),
		Value:                  newValue,
	}, nil
}

// Delete removes a tag from the dataset. Returns true if it was present.
func (d *Dataset) Delete(t tag.Tag) bool {
	for i, e := range d.Data.Elements {
		if e.Tag == t {
			d.Data.Elements = append(d.Data.Elements[:i], d.Data.Elements[i+1:]...)
			return true
		}
	}
	return false
}

// SaveAtomic writes the dataset to outputPath all-or-nothing: the bytes go
// to a temporary file in the destination directory and are renamed into
// place only after a fully successful write. A failed write leaves no
// partial output behind.
func (d *Dataset) SaveAtomic(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".deident-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Write DICOM with relaxed verification (many real-world DICOM files
	// don't strictly follow VR specifications)
	if err := dicom.Write(tmp, d.Data,
		dicom.SkipVRVerification(),
		dicom.SkipValueTypeVerification(),
		dicom.DefaultMissingTransferSyntax(),
	); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("could not write DICOM: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("could not close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("could not move output into place: %w", err)
	}
	return nil
}
