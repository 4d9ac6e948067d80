package deident

import (
	"fmt"
	"strings"
	"time"

	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"

	"dicom-deidentifier/internal/dates"
	dcm "dicom-deidentifier/internal/dicom"
	"dicom-deidentifier/internal/identity"
	"dicom-deidentifier/internal/preset"
)

// Compliance markers reserved by the standard for de-identified objects.
var (
	tagPatientIdentityRemoved = tag.Tag{Group: 0x0012, Element: 0x0062}
	tagDeidentificationMethod = tag.Tag{Group: 0x0012, Element: 0x0063}
)

// standardUIDTags are always remapped, with or without an explicit rule,
// so references between files of one study stay consistent.
var standardUIDTags = []tag.Tag{
	tag.StudyInstanceUID,
	tag.SeriesInstanceUID,
	tag.SOPInstanceUID,
	tag.FrameOfReferenceUID,
}

// Processor applies one compiled preset to individual files. It is safe
// for concurrent use: the preset is read-only and the mapper synchronizes
// internally.
type Processor struct {
	preset  *preset.CompiledPreset
	mapper  *identity.UIDMapper
	shifter *dates.Shifter
	preview bool
	log     *zap.Logger
}

// NewProcessor builds a processor. A nil shifter is derived from the
// preset's date policy; a nil logger is replaced with a no-op one.
func NewProcessor(cp *preset.CompiledPreset, mapper *identity.UIDMapper, shifter *dates.Shifter, preview bool, log *zap.Logger) *Processor {
	if shifter == nil && cp.DateHandling.Method == preset.DateShift {
		shifter = dates.NewShifter(cp.DateHandling.ShiftDays)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		preset:  cp,
		mapper:  mapper,
		shifter: shifter,
		preview: preview,
		log:     log,
	}
}

// ProcessFile runs the full pipeline for one file: read, de-identify,
// save. In preview mode the transform still runs and statistics are
// produced, but nothing is written. Output writes are all-or-nothing; a
// failure leaves no partial file behind.
func (p *Processor) ProcessFile(inputPath, outputPath string) *FileStatistics {
	start := time.Now()
	stats := &FileStatistics{
		Path:   inputPath,
		Remaps: make(map[string]RemapEntry),
	}
	defer func() {
		stats.Duration = time.Since(start)
	}()

	ds, err := dcm.Read(inputPath)
	if err != nil {
		stats.Error = (&RecordError{Path: inputPath, Err: err}).Error()
		return stats
	}

	p.Deidentify(ds, stats)

	if !p.preview {
		if err := ds.SaveAtomic(outputPath); err != nil {
			stats.Error = (&RecordError{Path: inputPath, Err: err}).Error()
			return stats
		}
	}

	stats.Success = true
	p.log.Debug("file de-identified",
		zap.String("path", inputPath),
		zap.Int("tags_modified", stats.TagsModified),
		zap.Int("tags_removed", stats.TagsRemoved),
		zap.Int("uids_remapped", stats.UIDsRemapped),
	)
	return stats
}

// Deidentify transforms an in-memory dataset: explicit rules first, then
// standard UID remapping, the date policy for unmatched date tags, the
// private-tag policy for untouched private tags, and finally the
// compliance markers.
func (p *Processor) Deidentify(ds *dcm.Dataset, stats *FileStatistics) {
	sc := newScrubber(knownIdentifiers(ds))
	touched := make(map[tag.Tag]bool)

	for _, cr := range p.preset.CompiledRules() {
		res := p.applyRule(ds, cr.Tag, cr.Rule, sc)
		touched[cr.Tag] = true
		p.fold(res, cr.Tag, stats)
	}

	p.remapStandardUIDs(ds, touched, stats)
	p.applyDatePolicy(ds, touched, stats)
	p.applyPrivatePolicy(ds, touched, stats)

	ds.SetString(tagPatientIdentityRemoved, "YES")
	ds.SetString(tagDeidentificationMethod, p.preset.Name)
}

// fold merges one action outcome into the file statistics.
func (p *Processor) fold(res actionResult, t tag.Tag, stats *FileStatistics) {
	if res.err != nil {
		stats.FieldErrors = append(stats.FieldErrors, res.err.Error())
		p.log.Warn("field error", zap.String("tag", tagString(t)), zap.Error(res.err))
		return
	}
	if res.removed {
		stats.TagsRemoved++
	} else if res.changed {
		stats.TagsModified++
	}
	if res.remap != nil {
		stats.UIDsRemapped++
		stats.Remaps[tagString(t)] = *res.remap
	}
}

// remapStandardUIDs routes the instance-level UIDs through the mapper and
// keeps the file-meta MediaStorageSOPInstanceUID consistent with the new
// SOPInstanceUID.
func (p *Processor) remapStandardUIDs(ds *dcm.Dataset, touched map[tag.Tag]bool, stats *FileStatistics) {
	for _, t := range standardUIDTags {
		if touched[t] {
			continue
		}
		res := p.remapUID(ds, t)
		touched[t] = true
		p.fold(res, t, stats)
	}

	if sop := ds.GetString(tag.SOPInstanceUID); sop != "" && ds.Has(tag.MediaStorageSOPInstanceUID) {
		ds.SetString(tag.MediaStorageSOPInstanceUID, sop)
	}
}

// applyDatePolicy handles every date-bearing tag (VR DA, DT, or TM) that
// no explicit rule touched. Paired TM values are removed under "remove"
// and left alone under "shift": a whole-day offset never crosses midnight.
func (p *Processor) applyDatePolicy(ds *dcm.Dataset, touched map[tag.Tag]bool, stats *FileStatistics) {
	method := p.preset.DateHandling.Method

	if method != preset.DateKeep {
		for _, ti := range ds.Tags() {
			if touched[ti.Tag] || ti.Tag.Group == 0x0002 {
				continue
			}
			switch ti.VR {
			case "DA", "DT", "TM":
			default:
				continue
			}

			switch method {
			case preset.DateRemove:
				if ds.Delete(ti.Tag) {
					stats.TagsRemoved++
				}
				touched[ti.Tag] = true

			case preset.DateShift:
				value := ds.GetString(ti.Tag)
				if value == "" || ti.VR == "TM" {
					touched[ti.Tag] = true
					continue
				}

				var shifted string
				var err error
				if ti.VR == "DA" {
					shifted, err = p.shifter.ShiftDate(value)
				} else {
					shifted, err = p.shifter.ShiftDateTime(value)
				}
				if err != nil {
					fe := &FieldError{Tag: ti.Tag, Reason: err.Error()}
					stats.FieldErrors = append(stats.FieldErrors, fe.Error())
					continue
				}

				if shifted != value {
					ds.SetString(ti.Tag, shifted)
					stats.TagsModified++
				}
				touched[ti.Tag] = true
			}
		}
	}

	// Under a remove policy ages over 89 are capped as well: the exact
	// value is itself identifying for the very old.
	if method == preset.DateRemove && !touched[tag.PatientAge] {
		if age := ds.GetString(tag.PatientAge); age != "" {
			if capped := dates.CapAge(age); capped != age {
				ds.SetString(tag.PatientAge, capped)
				stats.TagsModified++
			}
		}
	}
}

// applyPrivatePolicy removes every private-group tag no rule addressed,
// when the preset says so.
func (p *Processor) applyPrivatePolicy(ds *dcm.Dataset, touched map[tag.Tag]bool, stats *FileStatistics) {
	if p.preset.PrivateTags.Action != preset.PrivateRemove {
		return
	}

	for _, ti := range ds.Tags() {
		if touched[ti.Tag] || !isPrivate(ti.Tag) {
			continue
		}
		if ds.Delete(ti.Tag) {
			stats.PrivateTagsRemoved++
		}
	}
}

// isPrivate follows the DICOM convention: odd group numbers above the
// reserved range, excluding group length elements.
func isPrivate(t tag.Tag) bool {
	return t.Group%2 == 1 && t.Group > 0x0008 && t.Element != 0x0000
}

// knownIdentifiers collects the file's own identifying values for the
// clean action's vocabulary.
func knownIdentifiers(ds *dcm.Dataset) []string {
	var terms []string

	name := ds.GetString(tag.PatientName)
	terms = append(terms, strings.FieldsFunc(name, func(r rune) bool {
		return r == '^' || r == ',' || r == ' '
	})...)

	if pid := ds.GetString(tag.PatientID); pid != "" {
		terms = append(terms, pid)
	}
	if acc := ds.GetString(tag.AccessionNumber); acc != "" {
		terms = append(terms, acc)
	}
	return terms
}

func tagString(t tag.Tag) string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}
