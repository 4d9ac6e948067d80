package deident

import (
	"fmt"
	"regexp"

	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "dicom-deidentifier/internal/dicom"
	"dicom-deidentifier/internal/identity"
	"dicom-deidentifier/internal/preset"
)

var uidPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// actionResult reports what one rule application did to its tag.
type actionResult struct {
	changed bool
	removed bool
	remap   *RemapEntry
	err     error
}

// applyRule executes one rule against one tag. An absent tag is a no-op
// for every action. Only the addressed tag is ever mutated.
func (p *Processor) applyRule(ds *dcm.Dataset, t tag.Tag, r preset.Rule, sc *scrubber) actionResult {
	switch r.Action {
	case preset.ActionKeep:
		return actionResult{}

	case preset.ActionRemove:
		if ds.Delete(t) {
			return actionResult{removed: true}
		}
		return actionResult{}

	case preset.ActionEmpty:
		if !ds.Has(t) {
			return actionResult{}
		}
		if err := ds.SetString(t, ""); err != nil {
			return actionResult{err: &FieldError{Tag: t, Reason: err.Error()}}
		}
		return actionResult{changed: true}

	case preset.ActionReplace:
		if !ds.Has(t) {
			return actionResult{}
		}
		if err := ds.SetString(t, r.Replacement); err != nil {
			return actionResult{err: &FieldError{Tag: t, Reason: err.Error()}}
		}
		return actionResult{changed: true}

	case preset.ActionHash:
		return p.remapUID(ds, t)

	case preset.ActionClean:
		if !ds.Has(t) {
			return actionResult{}
		}
		value := ds.GetString(t)
		if value == "" {
			return actionResult{}
		}
		cleaned, changed := sc.clean(value)
		if !changed {
			return actionResult{}
		}
		if err := ds.SetString(t, cleaned); err != nil {
			return actionResult{err: &FieldError{Tag: t, Reason: err.Error()}}
		}
		return actionResult{changed: true}
	}

	// Unreachable for a compiled preset; Compile rejects unknown actions.
	return actionResult{err: &FieldError{Tag: t, Reason: fmt.Sprintf("unhandled action %q", r.Action)}}
}

// remapUID routes a UID-valued tag through the shared mapper. A value that
// is not syntactically a UID is a field error; the tag is left untouched.
func (p *Processor) remapUID(ds *dcm.Dataset, t tag.Tag) actionResult {
	if !ds.Has(t) {
		return actionResult{}
	}
	original := ds.GetString(t)
	if original == "" {
		return actionResult{}
	}

	if len(original) > identity.MaxUIDLength || !uidPattern.MatchString(original) {
		return actionResult{err: &FieldError{Tag: t, Reason: fmt.Sprintf("not a valid UID: %q", original)}}
	}

	mapped := p.mapper.Get(original)
	if err := ds.SetString(t, mapped); err != nil {
		return actionResult{err: &FieldError{Tag: t, Reason: err.Error()}}
	}
	return actionResult{
		changed: true,
		remap:   &RemapEntry{Original: original, Replacement: mapped},
	}
}
