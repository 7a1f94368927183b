// Package redact masks direct identifiers in report text before it leaves
// the service in previews, debug responses, or error payloads. Clinical
// content is left untouched; only the configured identifier patterns are
// replaced.
package redact

import "regexp"

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

type Redactor struct {
	rules []compiledRule
}

func NewRedactor(cfg RulesConfig) (*Redactor, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Redactor{rules: compiled}, nil
}

// Mask replaces every match of an enabled rule with its mask string.
func (r *Redactor) Mask(text string) string {
	if r == nil {
		return text
	}
	masked := text
	for _, rule := range r.rules {
		masked = rule.re.ReplaceAllString(masked, rule.rule.Mask)
	}
	return masked
}

// Preview truncates text to limit runes and masks the result. Used for the
// extraction-failure guidance payload and the PDF debug endpoint.
func (r *Redactor) Preview(text string, limit int) string {
	if limit > 0 {
		runes := []rune(text)
		if len(runes) > limit {
			text = string(runes[:limit]) + "..."
		}
	}
	return r.Mask(text)
}
