package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type answerKind uint8

const (
	kindNone answerKind = iota
	kindText
	kindBool
	kindList
)

// Answer holds either a learner's submitted answer or a canonical correct
// answer. It is a tagged union of a string, a boolean, or a list of
// acceptable strings, and round-trips through JSON in its original shape.
type Answer struct {
	kind answerKind
	text string
	flag bool
	list []string
}

// Text returns a string answer.
func Text(s string) Answer { return Answer{kind: kindText, text: s} }

// Bool returns a boolean answer.
func Bool(b bool) Answer { return Answer{kind: kindBool, flag: b} }

// List returns an answer accepting any of the given strings.
func List(items ...string) Answer {
	out := make([]string, len(items))
	copy(out, items)
	return Answer{kind: kindList, list: out}
}

// IsZero reports whether the answer carries no usable content. Blank
// strings and empty lists count as zero.
func (a Answer) IsZero() bool {
	switch a.kind {
	case kindText:
		return strings.TrimSpace(a.text) == ""
	case kindBool:
		return false
	case kindList:
		for _, s := range a.list {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
		return true
	}
	return true
}

// AsBool returns the boolean value and true when the answer is a boolean.
func (a Answer) AsBool() (bool, bool) {
	return a.flag, a.kind == kindBool
}

// IsList reports whether the answer is a list of alternatives.
func (a Answer) IsList() bool { return a.kind == kindList }

// String renders the answer as text. Booleans render as "true"/"false"
// and lists render their first alternative.
func (a Answer) String() string {
	switch a.kind {
	case kindText:
		return a.text
	case kindBool:
		return strconv.FormatBool(a.flag)
	case kindList:
		if len(a.list) > 0 {
			return a.list[0]
		}
	}
	return ""
}

// Candidates returns every acceptable rendering of the answer.
func (a Answer) Candidates() []string {
	switch a.kind {
	case kindList:
		out := make([]string, len(a.list))
		copy(out, a.list)
		return out
	case kindNone:
		return nil
	}
	return []string{a.String()}
}

// Value returns the answer as a plain Go value: string, bool, []string,
// or nil.
func (a Answer) Value() any {
	switch a.kind {
	case kindText:
		return a.text
	case kindBool:
		return a.flag
	case kindList:
		return a.Candidates()
	}
	return nil
}

// Equal reports whether a and b hold the same value.
func (a Answer) Equal(b Answer) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindText:
		return a.text == b.text
	case kindBool:
		return a.flag == b.flag
	case kindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if a.list[i] != b.list[i] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the answer.
func (a Answer) Clone() Answer {
	if a.kind == kindList {
		return List(a.list...)
	}
	return a
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = Bool(b)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*a = List(items...)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value %s", data)
		}
		*a = Text(n.String())
	}
	return nil
}
