package session

import "fmt"

// Label is the tri-state classification of a single image.
type Label int

const (
	Unlabeled Label = iota
	Yes
	No
)

// String returns the CSV form of the label. Unlabeled is the empty string.
func (l Label) String() string {
	switch l {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return ""
	}
}

// ParseLabel accepts exactly "Yes", "No" or "" and reports whether s was one of them.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "Yes":
		return Yes, true
	case "No":
		return No, true
	case "":
		return Unlabeled, true
	default:
		return Unlabeled, false
	}
}

func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	parsed, ok := ParseLabel(string(text))
	if !ok {
		return fmt.Errorf("invalid label %q (expected Yes, No or empty)", string(text))
	}
	*l = parsed
	return nil
}
