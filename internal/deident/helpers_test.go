package deident

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "dicom-deidentifier/internal/dicom"
	"dicom-deidentifier/internal/identity"
	"dicom-deidentifier/internal/preset"
)

func mustElem(t *testing.T, tg tag.Tag, value string) *dicom.Element {
	t.Helper()
	elem, err := dcm.NewStringElement(tg, value)
	require.NoError(t, err)
	return elem
}

func newStats() *FileStatistics {
	return &FileStatistics{Remaps: make(map[string]RemapEntry)}
}

func compile(t *testing.T, p preset.Preset) *preset.CompiledPreset {
	t.Helper()
	cp, err := p.Compile()
	require.NoError(t, err)
	return cp
}

func newTestProcessor(t *testing.T, p preset.Preset) *Processor {
	t.Helper()
	return NewProcessor(compile(t, p), identity.NewUIDMapper("test-salt"), nil, true, nil)
}
