package identity

import (
	"crypto/sha256"
	"math/big"
	"sync"
)

// UIDRoot is the root arc for generated UIDs (the UUID-derived space).
const UIDRoot = "2.25"

// MaxUIDLength is the DICOM ceiling for a UID value.
const MaxUIDLength = 64

// UIDMapper deterministically remaps DICOM UIDs. The replacement for a
// given original depends only on the original and the configured salt, so a
// re-run with the same salt reproduces the same mapping, within and across
// process restarts. One mapper instance is shared by every worker of a
// batch run so identifier consistency holds across all files.
type UIDMapper struct {
	mu      sync.Mutex
	salt    string
	mapping map[string]string
}

// NewUIDMapper creates a mapper with the given salt.
func NewUIDMapper(salt string) *UIDMapper {
	return &UIDMapper{
		salt:    salt,
		mapping: make(map[string]string),
	}
}

// Get returns the replacement UID for original, computing and memoizing it
// on first use. Concurrent first calls for the same original are serialized
// so exactly one replacement is chosen and all callers observe it.
func (m *UIDMapper) Get(original string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mapped, ok := m.mapping[original]; ok {
		return mapped
	}
	mapped := m.generate(original)
	m.mapping[original] = mapped
	return mapped
}

// generate derives a UID under the 2.25 root from sha256(original + salt).
func (m *UIDMapper) generate(original string) string {
	sum := sha256.Sum256([]byte(original + m.salt))

	// First 16 hash bytes as a decimal integer, UUID-style.
	n := new(big.Int).SetBytes(sum[:16])
	uid := UIDRoot + "." + n.String()

	if len(uid) > MaxUIDLength {
		uid = uid[:MaxUIDLength]
	}
	return uid
}

// Snapshot returns a consistent copy of the full mapping table for the
// audit trail. It never exposes a half-written entry.
func (m *UIDMapper) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.mapping))
	for k, v := range m.mapping {
		out[k] = v
	}
	return out
}

// Len returns the number of mapped UIDs.
func (m *UIDMapper) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mapping)
}

// Reset clears all entries. Only call between independent batch runs, never
// concurrently with in-flight Get calls.
func (m *UIDMapper) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapping = make(map[string]string)
}
