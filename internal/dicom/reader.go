package dicom

import (
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Dataset wraps a parsed DICOM dataset for easier access
type Dataset struct {
	Data     dicom.Dataset
	FilePath string
}

// Read reads a DICOM file and returns the dataset.
func Read(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM: %w", err)
	}

	return &Dataset{
		Data:     ds,
		FilePath: path,
	}, nil
}

// ReadMetadataOnly reads only the metadata (no pixel data).
func ReadMetadataOnly(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM: %w", err)
	}

	return &Dataset{
		Data:     ds,
		FilePath: path,
	}, nil
}

// FromElements builds an in-memory dataset, mostly for tests and previews.
func FromElements(elems ...*dicom.Element) *Dataset {
	return &Dataset{Data: dicom.Dataset{Elements: elems}}
}

// Has reports whether the dataset contains the tag.
func (d *Dataset) Has(t tag.Tag) bool {
	_, err := d.Data.FindElementByTag(t)
	return err == nil
}

// GetString returns a string value for a tag, or empty string if not found.
func (d *Dataset) GetString(t tag.Tag) string {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		return ""
	}

	if elem.Value == nil {
		return ""
	}

	value := elem.Value.GetValue()
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	case string:
		return v
	}

	return fmt.Sprintf("%v", value)
}

// TagInfo is one (selector, VR) pair from an element walk.
type TagInfo struct {
	Tag tag.Tag
	VR  string
}

// Tags returns a snapshot of every element's tag and value representation,
// in element order. Safe to iterate while mutating the dataset.
func (d *Dataset) Tags() []TagInfo {
	out := make([]TagInfo, 0, len(d.Data.Elements))
	for _, e := range d.Data.Elements {
		out = append(out, TagInfo{Tag: e.Tag, VR: e.RawValueRepresentation})
	}
	return out
}
