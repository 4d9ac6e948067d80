package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePresetYAML = `name: site-profile
description: Site-specific profile
version: 1.0.0
compliance:
  - HIPAA Safe Harbor
date_handling:
  method: shift
  shift_days: -100
private_tags:
  action: remove
rules:
  - tag: "(0010,0010)"
    action: replace
    replacement: ANON
  - tag: "(0008,0050)"
    action: empty
  - tag: "(0020,000D)"
    action: hash
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePresetYAML), 0644))

	cp, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "site-profile", cp.Name)
	assert.Equal(t, DateShift, cp.DateHandling.Method)
	assert.Equal(t, -100, cp.DateHandling.ShiftDays)
	assert.Len(t, cp.CompiledRules(), 3)
}

func TestLoadFileRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not a rule"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsInvalidPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "name: broken\ndate_handling:\n  method: shift\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err, "shift without shift_days must be rejected at load time")
}

func TestLoadUnknownName(t *testing.T) {
	_, err := Load("no-such-preset")
	assert.Error(t, err)
}
