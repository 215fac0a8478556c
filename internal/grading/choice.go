package grading

import (
	"regexp"
	"strings"
)

var letterPrefix = regexp.MustCompile(`^\s*([A-Da-d])\s*\)`)

// optionLetter extracts the option letter from "B) text" or a bare "b".
func optionLetter(s string) (string, bool) {
	if m := letterPrefix.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1]), true
	}
	t := strings.TrimSpace(s)
	if len(t) == 1 && strings.ContainsAny(t, "ABCDabcd") {
		return strings.ToUpper(t), true
	}
	return "", false
}

// optionText strips a leading "X)" label.
func optionText(opt string) string {
	if loc := letterPrefix.FindStringIndex(opt); loc != nil {
		return strings.TrimSpace(opt[loc[1]:])
	}
	return strings.TrimSpace(opt)
}

// letterFor resolves an answer to its option letter, first from an
// explicit label and then by matching an option's text.
func letterFor(answer string, options []string) (string, bool) {
	if l, ok := optionLetter(answer); ok {
		return l, true
	}
	want := strings.TrimSpace(answer)
	if want == "" {
		return "", false
	}
	for i, opt := range options {
		if !strings.EqualFold(optionText(opt), want) && !strings.EqualFold(strings.TrimSpace(opt), want) {
			continue
		}
		if l, ok := optionLetter(opt); ok {
			return l, true
		}
		if i < 4 {
			return string(rune('A' + i)), true
		}
	}
	return "", false
}
