package controller

import "time"

type Kind string

const (
	KindOK    Kind = "ok"
	KindWarn  Kind = "warn"
	KindError Kind = "error"
)

// Status is the transient message shown after an action.
type Status struct {
	Kind Kind
	Text string
	At   time.Time
}

var okText = map[string]string{
	"created": "Created.",
	"saved":   "Saved.",
	"deleted": "Deleted.",
}

var warnText = map[string]string{
	"no_changes":     "No changes to save.",
	"read_only":      "The system is read-only; changes are disabled.",
	"missing_record": "Record not found or has no id.",
	"not_editing":    "Nothing is being edited.",
}

var errText = map[string]string{
	"load_failed":   "Could not load the list. Try again.",
	"save_failed":   "Could not save. Your changes are kept; try again.",
	"delete_failed": "Could not delete.",
	"invalid":       "Please fix the highlighted fields.",
}

// makeStatus resolves key against the message table of kind; unknown keys
// are used as the text itself.
func makeStatus(kind Kind, key string) Status {
	var table map[string]string
	switch kind {
	case KindOK:
		table = okText
	case KindWarn:
		table = warnText
	default:
		table = errText
	}
	text, ok := table[key]
	if !ok {
		text = key
	}
	return Status{Kind: kind, Text: text, At: time.Now()}
}
