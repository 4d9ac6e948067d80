package deident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom/pkg/tag"

	dcm "dicom-deidentifier/internal/dicom"
	"dicom-deidentifier/internal/preset"
)

func TestDeidentifyRulesAndMarkers(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "unit-preset",
		DateHandling: preset.DatePolicy{Method: preset.DateRemove},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
		Rules: []preset.Rule{
			{Tag: "(0010,0010)", Action: preset.ActionReplace, Replacement: "ANONYMIZED"},
		},
	})

	ds := dcm.FromElements(
		mustElem(t, tag.PatientName, "Doe^Jane"),
		mustElem(t, tag.PatientBirthDate, "19530412"),
	)
	stats := newStats()
	p.Deidentify(ds, stats)

	assert.Equal(t, "ANONYMIZED", ds.GetString(tag.PatientName))
	assert.False(t, ds.Has(tag.PatientBirthDate), "date policy removes unmatched DA tags")
	assert.Equal(t, "YES", ds.GetString(tag.Tag{Group: 0x0012, Element: 0x0062}))
	assert.Equal(t, "unit-preset", ds.GetString(tag.Tag{Group: 0x0012, Element: 0x0063}))
	assert.Equal(t, 1, stats.TagsRemoved)
	assert.GreaterOrEqual(t, stats.TagsModified, 1)
}

func TestDeidentifyDateShift(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "shift-preset",
		DateHandling: preset.DatePolicy{Method: preset.DateShift, ShiftDays: -100},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
	})

	ds := dcm.FromElements(
		mustElem(t, tag.StudyDate, "20200101"),
		mustElem(t, tag.StudyTime, "120000"),
	)
	stats := newStats()
	p.Deidentify(ds, stats)

	assert.Equal(t, "20190923", ds.GetString(tag.StudyDate))
	assert.Equal(t, "120000", ds.GetString(tag.StudyTime), "times pass through under shift")
}

func TestDeidentifyDateShiftUnparseable(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "shift-preset",
		DateHandling: preset.DatePolicy{Method: preset.DateShift, ShiftDays: -100},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
	})

	ds := dcm.FromElements(mustElem(t, tag.StudyDate, "UNKNOWN"))
	stats := newStats()
	p.Deidentify(ds, stats)

	assert.Equal(t, "UNKNOWN", ds.GetString(tag.StudyDate), "unparseable dates stay put")
	assert.NotEmpty(t, stats.FieldErrors)
}

func TestDeidentifyPrivateTags(t *testing.T) {
	privateTag := tag.Tag{Group: 0x0009, Element: 0x1001}
	groupLength := tag.Tag{Group: 0x0009, Element: 0x0000}

	newDS := func() *dcm.Dataset {
		return dcm.FromElements(
			mustElem(t, tag.PatientName, "Doe^Jane"),
			mustElem(t, privateTag, "vendor secret"),
			mustElem(t, groupLength, "128"),
		)
	}

	remove := newTestProcessor(t, preset.Preset{
		Name:         "private-remove",
		DateHandling: preset.DatePolicy{Method: preset.DateKeep},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateRemove},
	})
	ds := newDS()
	stats := newStats()
	remove.Deidentify(ds, stats)
	assert.False(t, ds.Has(privateTag))
	assert.True(t, ds.Has(groupLength), "group length elements are not private data")
	assert.True(t, ds.Has(tag.PatientName))
	assert.Equal(t, 1, stats.PrivateTagsRemoved)

	keep := newTestProcessor(t, preset.Preset{
		Name:         "private-keep",
		DateHandling: preset.DatePolicy{Method: preset.DateKeep},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
	})
	ds = newDS()
	stats = newStats()
	keep.Deidentify(ds, stats)
	assert.True(t, ds.Has(privateTag))
	assert.Zero(t, stats.PrivateTagsRemoved)
}

func TestDeidentifyPrivateRuleWinsOverPolicy(t *testing.T) {
	privateTag := tag.Tag{Group: 0x0009, Element: 0x1001}
	p := newTestProcessor(t, preset.Preset{
		Name:         "private-mixed",
		DateHandling: preset.DatePolicy{Method: preset.DateKeep},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateRemove},
		Rules: []preset.Rule{
			{Tag: "(0009,1001)", Action: preset.ActionKeep},
		},
	})

	ds := dcm.FromElements(mustElem(t, privateTag, "calibration data"))
	stats := newStats()
	p.Deidentify(ds, stats)

	assert.Equal(t, "calibration data", ds.GetString(privateTag))
	assert.Zero(t, stats.PrivateTagsRemoved)
}

func TestDeidentifyStandardUIDConsistency(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "uid-preset",
		DateHandling: preset.DatePolicy{Method: preset.DateKeep},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
	})

	study := "1.2.840.113619.2.55.3.100"
	sop := "1.2.840.113619.2.55.3.100.1.1"

	first := dcm.FromElements(
		mustElem(t, tag.StudyInstanceUID, study),
		mustElem(t, tag.SOPInstanceUID, sop),
		mustElem(t, tag.MediaStorageSOPInstanceUID, sop),
	)
	second := dcm.FromElements(
		mustElem(t, tag.StudyInstanceUID, study),
		mustElem(t, tag.SOPInstanceUID, sop+".2"),
	)

	p.Deidentify(first, newStats())
	p.Deidentify(second, newStats())

	mappedStudy := first.GetString(tag.StudyInstanceUID)
	require.NotEqual(t, study, mappedStudy)
	assert.Equal(t, mappedStudy, second.GetString(tag.StudyInstanceUID),
		"shared study UID maps identically across files")

	assert.NotEqual(t, first.GetString(tag.SOPInstanceUID), second.GetString(tag.SOPInstanceUID),
		"distinct SOP UIDs stay distinct")
	assert.Equal(t, first.GetString(tag.SOPInstanceUID), first.GetString(tag.MediaStorageSOPInstanceUID),
		"file meta SOP instance UID follows the remapped value")
}

func TestDeidentifyFieldErrorIsolation(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "isolation",
		DateHandling: preset.DatePolicy{Method: preset.DateKeep},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
		Rules: []preset.Rule{
			{Tag: "(0008,0050)", Action: preset.ActionHash},
			{Tag: "(0010,0010)", Action: preset.ActionReplace, Replacement: "ANON"},
		},
	})

	ds := dcm.FromElements(
		mustElem(t, tag.AccessionNumber, "not-a-uid"),
		mustElem(t, tag.PatientName, "Doe^Jane"),
	)
	stats := newStats()
	p.Deidentify(ds, stats)

	assert.Equal(t, "not-a-uid", ds.GetString(tag.AccessionNumber), "failing field stays put")
	assert.Equal(t, "ANON", ds.GetString(tag.PatientName), "later rules still run")
	assert.Len(t, stats.FieldErrors, 1)
}

func TestDeidentifyCapsAge(t *testing.T) {
	p := newTestProcessor(t, preset.Preset{
		Name:         "age-preset",
		DateHandling: preset.DatePolicy{Method: preset.DateRemove},
		PrivateTags:  preset.PrivatePolicy{Action: preset.PrivateKeep},
	})

	ds := dcm.FromElements(mustElem(t, tag.PatientAge, "097Y"))
	p.Deidentify(ds, newStats())
	assert.Equal(t, "90+", ds.GetString(tag.PatientAge))

	ds = dcm.FromElements(mustElem(t, tag.PatientAge, "042Y"))
	p.Deidentify(ds, newStats())
	assert.Equal(t, "042Y", ds.GetString(tag.PatientAge))
}
