package workflow

type Stage int

const (
	StageTemplateSelection Stage = iota
	StageDetailsEntry
	StageVerification
	StageIssued
)

func (self Stage) String() string {
	switch self {
	case StageTemplateSelection:
		return "template_selection"
	case StageDetailsEntry:
		return "details_entry"
	case StageVerification:
		return "verification"
	case StageIssued:
		return "issued"
	}
	return "unknown"
}

// User actions. Each stage enables a fixed subset.
type Operation string

const (
	OpSelectTemplate Operation = "select_template"
	OpEditDetails    Operation = "edit_details"
	OpExtract        Operation = "extract"
	OpContinue       Operation = "continue"
	OpBack           Operation = "back"
	OpVerify         Operation = "verify"
	OpIssue          Operation = "issue"
	OpCancel         Operation = "cancel"
)

var operations = map[Stage][]Operation{
	StageTemplateSelection: {OpSelectTemplate, OpContinue, OpCancel},
	StageDetailsEntry:      {OpEditDetails, OpExtract, OpContinue, OpCancel},
	StageVerification:      {OpVerify, OpIssue, OpBack, OpCancel},
	StageIssued:            {OpCancel},
}

func (self Stage) Allows(op Operation) bool {
	for _, o := range operations[self] {
		if o == op {
			return true
		}
	}
	return false
}
