package preset

// Built-in presets. The tag coverage follows the DICOM PS3.15 basic profile
// attributes for the patient, study, and physician modules.

var builtins = map[string]Preset{
	"safe-harbor":           safeHarbor,
	"research-longitudinal": researchLongitudinal,
}

// safeHarbor is the conservative default: dates removed, private groups
// removed, direct identifiers blanked or stripped.
var safeHarbor = Preset{
	Name:        "safe-harbor",
	Description: "HIPAA Safe Harbor oriented profile: removes dates and direct identifiers",
	Version:     "1.0.0",
	Compliance:  []string{"HIPAA Safe Harbor", "DICOM PS3.15"},
	DateHandling: DatePolicy{
		Method: DateRemove,
	},
	PrivateTags: PrivatePolicy{
		Action: PrivateRemove,
	},
	Rules: []Rule{
		{Tag: "(0010,0010)", Action: ActionReplace, Replacement: "ANONYMIZED", Description: "Patient's Name"},
		{Tag: "(0010,0020)", Action: ActionEmpty, Description: "Patient ID"},
		{Tag: "(0010,0030)", Action: ActionRemove, Description: "Patient's Birth Date"},
		{Tag: "(0010,0032)", Action: ActionRemove, Description: "Patient's Birth Time"},
		{Tag: "(0010,1000)", Action: ActionRemove, Description: "Other Patient IDs"},
		{Tag: "(0010,1001)", Action: ActionRemove, Description: "Other Patient Names"},
		{Tag: "(0010,1040)", Action: ActionRemove, Description: "Patient's Address"},
		{Tag: "(0010,2154)", Action: ActionRemove, Description: "Patient's Telephone Numbers"},
		{Tag: "(0010,4000)", Action: ActionClean, Description: "Patient Comments"},
		{Tag: "(0008,0050)", Action: ActionEmpty, Description: "Accession Number"},
		{Tag: "(0008,0080)", Action: ActionEmpty, Description: "Institution Name"},
		{Tag: "(0008,0081)", Action: ActionRemove, Description: "Institution Address"},
		{Tag: "(0008,0090)", Action: ActionEmpty, Description: "Referring Physician's Name"},
		{Tag: "(0008,1048)", Action: ActionRemove, Description: "Physician(s) of Record"},
		{Tag: "(0008,1050)", Action: ActionRemove, Description: "Performing Physician's Name"},
		{Tag: "(0008,1070)", Action: ActionRemove, Description: "Operators' Name"},
		{Tag: "(0008,1030)", Action: ActionClean, Description: "Study Description"},
		{Tag: "(0008,103E)", Action: ActionClean, Description: "Series Description"},
		{Tag: "(0020,0010)", Action: ActionEmpty, Description: "Study ID"},
		{Tag: "(0020,000D)", Action: ActionHash, Description: "Study Instance UID"},
		{Tag: "(0020,000E)", Action: ActionHash, Description: "Series Instance UID"},
		{Tag: "(0008,0018)", Action: ActionHash, Description: "SOP Instance UID"},
	},
}

// researchLongitudinal keeps study timelines intact by shifting every date
// by a constant offset instead of removing it.
var researchLongitudinal = Preset{
	Name:        "research-longitudinal",
	Description: "Research profile preserving intervals between studies via date shifting",
	Version:     "1.0.0",
	Compliance:  []string{"DICOM PS3.15"},
	DateHandling: DatePolicy{
		Method:    DateShift,
		ShiftDays: -3650,
	},
	PrivateTags: PrivatePolicy{
		Action: PrivateRemove,
	},
	Rules: []Rule{
		{Tag: "(0010,0010)", Action: ActionReplace, Replacement: "ANONYMIZED", Description: "Patient's Name"},
		{Tag: "(0010,0020)", Action: ActionEmpty, Description: "Patient ID"},
		{Tag: "(0010,0030)", Action: ActionRemove, Description: "Patient's Birth Date"},
		{Tag: "(0010,1000)", Action: ActionRemove, Description: "Other Patient IDs"},
		{Tag: "(0010,1040)", Action: ActionRemove, Description: "Patient's Address"},
		{Tag: "(0010,2154)", Action: ActionRemove, Description: "Patient's Telephone Numbers"},
		{Tag: "(0008,0050)", Action: ActionEmpty, Description: "Accession Number"},
		{Tag: "(0008,0090)", Action: ActionEmpty, Description: "Referring Physician's Name"},
		{Tag: "(0008,1050)", Action: ActionRemove, Description: "Performing Physician's Name"},
		{Tag: "(0008,1070)", Action: ActionRemove, Description: "Operators' Name"},
		{Tag: "(0008,1030)", Action: ActionKeep, Description: "Study Description"},
		{Tag: "(0008,103E)", Action: ActionKeep, Description: "Series Description"},
		{Tag: "(0020,000D)", Action: ActionHash, Description: "Study Instance UID"},
		{Tag: "(0020,000E)", Action: ActionHash, Description: "Series Instance UID"},
		{Tag: "(0008,0018)", Action: ActionHash, Description: "SOP Instance UID"},
	},
}
