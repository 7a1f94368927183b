// Package extraction infers patient identity fields from unstructured
// report text. Each field is resolved independently against an ordered rule
// list with first-match-wins semantics; no scoring and no blending of
// signals across rules, so every outcome is attributable to a single rule.
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medanalyzer/platform/pkg/common/models"
)

const (
	minNameLen = 2
	maxNameLen = 49

	minAge = 0
	maxAge = 120
)

var (
	honorificPrefixRe = regexp.MustCompile(`(?i)^(?:mr\.?|mrs\.?|ms\.?|dr\.?)\s*`)
	innerSpaceRe      = regexp.MustCompile(`\s+`)
	numericOnlyRe     = regexp.MustCompile(`^\d+$`)
)

// Extract never fails: fields that cannot be inferred come back as their
// zero defaults (empty name, age 0 for unknown, gender Unknown).
func Extract(text string) models.ExtractedFields {
	return models.ExtractedFields{
		Name:   Name(text),
		Age:    Age(text),
		Gender: Gender(text),
	}
}

// Name returns the normalized patient name, or "" when no rule produced an
// acceptable candidate.
func Name(text string) string {
	for _, r := range nameRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name, ok := cleanName(m[1]); ok {
			return name
		}
	}
	return ""
}

// cleanName collapses whitespace, strips a leading honorific, and rejects
// candidates that are purely numeric or outside the accepted length range.
func cleanName(raw string) (string, bool) {
	name := innerSpaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	if len(name) < minNameLen || len(name) > maxNameLen {
		return "", false
	}
	name = strings.TrimSpace(honorificPrefixRe.ReplaceAllString(name, ""))
	if name == "" || numericOnlyRe.MatchString(name) {
		return "", false
	}
	return models.NormalizeName(name), true
}

// Age returns the extracted age, or 0 when no rule yielded a value inside
// [0, 120]. Out-of-range candidates are discarded and the next rule tried.
func Age(text string) int {
	for _, r := range ageRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if age >= minAge && age <= maxAge {
			return age
		}
	}
	return 0
}

// Gender resolves from an explicit gender/sex label first. Without a label,
// a direct word scan is used only when the opposing word is absent; a
// document mentioning both "male" and "female" stays Unknown rather than
// guessing.
func Gender(text string) models.Gender {
	if m := genderLabelRule.re.FindStringSubmatch(text); m != nil {
		if g := parseGender(m[1]); g != models.GenderUnknown {
			return g
		}
	}

	hasMale := maleWordRe.MatchString(text)
	hasFemale := femaleWordRe.MatchString(text)
	switch {
	case hasMale && !hasFemale:
		return models.GenderMale
	case hasFemale && !hasMale:
		return models.GenderFemale
	default:
		return models.GenderUnknown
	}
}

// parseGender maps free-form gender tokens onto the stored enum.
func parseGender(token string) models.Gender {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".") {
	case "male", "m", "mr":
		return models.GenderMale
	case "female", "f", "mrs", "ms":
		return models.GenderFemale
	default:
		return models.GenderUnknown
	}
}

// ParseGender is the exported form used by the manual-override path, where
// callers supply gender as free text.
func ParseGender(token string) models.Gender {
	return parseGender(token)
}
