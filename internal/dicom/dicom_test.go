package dicom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func datasetWith(t *testing.T, tg tag.Tag, value string) *Dataset {
	t.Helper()
	e, err := NewStringElement(tg, value)
	require.NoError(t, err)
	return FromElements(e)
}

func TestGetString(t *testing.T) {
	ds := datasetWith(t, tag.PatientName, "Doe^Jane")
	assert.Equal(t, "Doe^Jane", ds.GetString(tag.PatientName))
	assert.Equal(t, "", ds.GetString(tag.PatientID), "absent tag reads empty")
}

func TestSetStringReplace(t *testing.T) {
	ds := datasetWith(t, tag.PatientName, "Doe^Jane")
	require.NoError(t, ds.SetString(tag.PatientName, "ANON"))
	assert.Equal(t, "ANON", ds.GetString(tag.PatientName))
	assert.Len(t, ds.Data.Elements, 1, "replace must not duplicate the element")
}

func TestSetStringInsert(t *testing.T) {
	ds := FromElements()
	require.NoError(t, ds.SetString(tag.PatientID, "PID001"))
	assert.True(t, ds.Has(tag.PatientID))
	assert.Equal(t, "PID001", ds.GetString(tag.PatientID))
}

func TestSetStringInsertUnknownTag(t *testing.T) {
	private := tag.Tag{Group: 0x0009, Element: 0x1001}
	ds := FromElements()
	require.NoError(t, ds.SetString(private, "vendor"))
	assert.Equal(t, "vendor", ds.GetString(private))
}

func TestDelete(t *testing.T) {
	ds := datasetWith(t, tag.PatientName, "Doe^Jane")
	assert.True(t, ds.Delete(tag.PatientName))
	assert.False(t, ds.Has(tag.PatientName))
	assert.False(t, ds.Delete(tag.PatientName), "second delete reports absence")
}

func saveTestFile(t *testing.T, path string) {
	t.Helper()
	ds := FromElements()
	for _, kv := range []struct {
		tg    tag.Tag
		value string
	}{
		{tag.MediaStorageSOPClassUID, "1.2.840.10008.5.1.4.1.1.7"},
		{tag.MediaStorageSOPInstanceUID, "1.2.3.4"},
		{tag.TransferSyntaxUID, "1.2.840.10008.1.2.1"},
		{tag.SOPClassUID, "1.2.840.10008.5.1.4.1.1.7"},
		{tag.SOPInstanceUID, "1.2.3.4"},
		{tag.PatientName, "Doe^Jane"},
	} {
		require.NoError(t, ds.SetString(kv.tg, kv.value))
	}
	require.NoError(t, ds.SaveAtomic(path))
}

func TestSaveAtomicRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "a.dcm")
	saveTestFile(t, path)

	ds, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Doe^Jane", ds.GetString(tag.PatientName))
	assert.Equal(t, "1.2.3.4", ds.GetString(tag.SOPInstanceUID))
}

func TestSaveAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	saveTestFile(t, filepath.Join(dir, "a.dcm"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.dcm", entries[0].Name())
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	saveTestFile(t, filepath.Join(dir, "a.dcm"))
	saveTestFile(t, filepath.Join(dir, "b.DICOM"))
	saveTestFile(t, filepath.Join(dir, "sub", "c.dcm"))

	// Extension-less file with the DICM magic bytes.
	magic := make([]byte, 140)
	copy(magic[128:], "DICM")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noext"), magic, 0644))

	// Distractors that must all be skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DICOMDIR"), []byte("index"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), make([]byte, 200), 0644))

	files, err := Find(dir, true)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Contains(t, files, filepath.Join(dir, "a.dcm"))
	assert.Contains(t, files, filepath.Join(dir, "b.DICOM"))
	assert.Contains(t, files, filepath.Join(dir, "sub", "c.dcm"))
	assert.Contains(t, files, filepath.Join(dir, "noext"))
}

func TestFindNonRecursive(t *testing.T) {
	dir := t.TempDir()
	saveTestFile(t, filepath.Join(dir, "a.dcm"))
	saveTestFile(t, filepath.Join(dir, "sub", "c.dcm"))

	files, err := Find(dir, false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.dcm"), files[0])
}

func TestFindSorted(t *testing.T) {
	dir := t.TempDir()
	saveTestFile(t, filepath.Join(dir, "z.dcm"))
	saveTestFile(t, filepath.Join(dir, "a.dcm"))
	saveTestFile(t, filepath.Join(dir, "m.dcm"))

	files, err := Find(dir, true)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, sortedStrings(files))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
