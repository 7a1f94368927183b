package models

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var spacesRe = regexp.MustCompile(`\s+`)

// NormalizeName produces the canonical stored form of a patient name:
// surrounding whitespace stripped, internal runs collapsed, title-cased.
// Lookups compare normalized forms, so "jane   doe" and "Jane Doe" collide.
//
// The title caser is built per call; cases.Caser wraps a stateful
// transformer and must not be shared between goroutines.
func NormalizeName(name string) string {
	name = spacesRe.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(name))
}
