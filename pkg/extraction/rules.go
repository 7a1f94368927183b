package extraction

import "regexp"

// A rule pairs a compiled pattern with a stable tag so an extraction outcome
// is always traceable to exactly one pattern. Rules are evaluated in slice
// order and the first accepted candidate wins; later rules are never
// consulted once a field is filled.
type rule struct {
	tag string
	re  *regexp.Regexp
}

// Name rules anchor on explicit label cues. Capture group 1 is the raw
// candidate, cleaned and validated by cleanName before acceptance.
var nameRules = []rule{
	{"patient-name-label-caps", regexp.MustCompile(
		`(?i)patient\s+name\s*:\s*(?:(?:mr|mrs|ms|dr)\.?\s+)?([A-Z][A-Z\s]+?)\s*(?:study|age|referring|sex|gender|\n|$)`)},
	{"name-label-mixed", regexp.MustCompile(
		`(?i)(?:patient\s+)?name\s*:\s*(?:(?:mr|mrs|ms|dr)\.?\s+)?([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){1,4})\s*(?:\n|$|study|age|dob|sex|gender|mrn|address|phone)`)},
	{"honorific", regexp.MustCompile(
		`(?i)\b(?:mr|mrs|ms)\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)},
	{"name-label-single", regexp.MustCompile(
		`(?i)\bname\s*:\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)\b`)},
	{"name-or-patient-assign", regexp.MustCompile(
		`(?i)\b(?:name|patient)\s*[:=]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)},
	{"your-patient", regexp.MustCompile(
		`(?i)your patient\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)},
	{"re-line-mrn", regexp.MustCompile(
		`(?i)re:.*?for\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+),\s*MRN`)},
	{"dear-doctor", regexp.MustCompile(
		`(?i)dear\s+dr\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)[:,]`)},
	{"patient-aged", regexp.MustCompile(
		`(?i)patient\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+),?\s+(?:aged?|age|is)`)},
}

// Age rules require a numeric token in a clinical-age context. Group 1 is
// the candidate integer, accepted only inside [0, 120].
var ageRules = []rule{
	{"age-label", regexp.MustCompile(
		`(?i)age\s*[:=]\s*(\d{1,3})(?:\s*(?:years?|yrs?|y\.?o\.?))?`)},
	{"parenthetical", regexp.MustCompile(
		`(?i)\((\d{1,3})\s*(?:years?\s*old|yrs?\s*old|y\.o\.)\)`)},
	{"aged-label", regexp.MustCompile(
		`(?i)(?:age|aged?)\s*[:=]?\s*(\d{1,3})\s*(?:years?|yrs?|y\.o\.?)?`)},
	{"years-old", regexp.MustCompile(
		`(?i)(\d{1,3})\s*(?:years?\s*old|yrs?\s*old|y\.o\.)`)},
	{"aged-word", regexp.MustCompile(
		`(?i)aged?\s+(\d{1,3})`)},
	{"age-assign", regexp.MustCompile(
		`(?i)age\s*[:=]\s*(\d{1,3})`)},
	{"dob-parenthetical", regexp.MustCompile(
		`(?i)DOB:\s*\d{2}/\d{2}/\d{4}\s*\((\d{1,3})\s*(?:years?\s*old|yrs?\s*old|y\.o\.)\)`)},
	{"year-old-suffix", regexp.MustCompile(
		`(?i)(\d{1,3})\s*-?\s*year[-\s]*old`)},
}

// Gender label rule; matched values are mapped through parseGender. When no
// label is present a word-boundary scan runs instead, with the ambiguity
// guard applied (both words present leaves the field Unknown).
var genderLabelRule = rule{"gender-label", regexp.MustCompile(
	`(?i)(?:gender|sex)\s*[:=]\s*(male|female|m|f)`)}

var (
	maleWordRe   = regexp.MustCompile(`(?i)\bmale\b`)
	femaleWordRe = regexp.MustCompile(`(?i)\bfemale\b`)
)
