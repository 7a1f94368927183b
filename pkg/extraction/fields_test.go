package extraction

import (
	"testing"

	"github.com/medanalyzer/platform/pkg/common/models"
)

func TestExtractName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"labeled", "Patient Name: John Smith\nAge: 45", "John Smith"},
		{"labeled lowercase", "patient name: john smith\nage: 45", "John Smith"},
		{"labeled all caps", "PATIENT NAME: ALICE WONG\nSTUDY: CHEST", "Alice Wong"},
		{"honorific stripped", "Patient Name: Mr. David Brown\nSex: M", "David Brown"},
		{"bare honorific", "Follow-up for Mrs. Sarah Connor.", "Sarah Connor"},
		{"your patient", "Regarding your patient James Miller, the scan shows", "James Miller"},
		{"dear doctor", "Dear Dr. Emily Stone,\nthe attached report", "Emily Stone"},
		{"patient aged", "Patient Robert Fox, aged 61, presented with", "Robert Fox"},
		{"no cue", "Findings are unremarkable. Follow up in 6 weeks.", ""},
		{"numeric candidate rejected", "Name: 12345\nAge: 30", ""},
		{"too short rejected", "Name: X\nAge: 30", ""},
		{"irregular spacing", "Patient Name:   Jane    Doe\nDOB: 01/01/1980", "Jane Doe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Name(tc.text); got != tc.want {
				t.Errorf("Name(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractAge(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"labeled with unit", "Age: 45 years", 45},
		{"labeled bare", "Age: 29", 29},
		{"out of range rejected", "Age: 200", 0},
		{"years old", "The patient is 37 years old.", 37},
		{"hyphenated", "A 52-year-old male presented.", 52},
		{"parenthetical", "DOB: 03/14/1970 (54 years old)", 54},
		{"aged word", "Patient Robert Fox, aged 61", 61},
		{"upper bound accepted", "Age: 120", 120},
		{"zero accepted", "Age: 0", 0},
		{"absent", "No demographics recorded.", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Age(tc.text); got != tc.want {
				t.Errorf("Age(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractGender(t *testing.T) {
	cases := []struct {
		name string
		text string
		want models.Gender
	}{
		{"label female", "Sex: Female", models.GenderFemale},
		{"label male", "Gender: male", models.GenderMale},
		{"label abbreviated", "Sex: F", models.GenderFemale},
		{"word scan male", "A 52-year-old male presented.", models.GenderMale},
		{"word scan female", "The female patient reports no pain.", models.GenderFemale},
		{"both words ambiguous", "Differential applies to male and female patients alike.", models.GenderUnknown},
		{"female does not imply male", "Female, 44, presenting with cough.", models.GenderFemale},
		{"absent", "Chest X-ray reviewed.", models.GenderUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Gender(tc.text); got != tc.want {
				t.Errorf("Gender(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractComposite(t *testing.T) {
	text := "Patient Name: ALICE WONG\nAge: 29\nSex: Female"
	fields := Extract(text)

	if fields.Name != "Alice Wong" {
		t.Errorf("name = %q, want %q", fields.Name, "Alice Wong")
	}
	if fields.Age != 29 {
		t.Errorf("age = %d, want 29", fields.Age)
	}
	if fields.Gender != models.GenderFemale {
		t.Errorf("gender = %q, want Female", fields.Gender)
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Patient Name: John Smith\nAge: 45 years\nGender: male\nDiagnosis: hypertension"
	first := Extract(text)
	second := Extract(text)
	if first != second {
		t.Fatalf("extraction not deterministic: %+v vs %+v", first, second)
	}
}

func TestExtractNeverFails(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "€∆ø 123 !!"} {
		fields := Extract(text)
		if fields.Name != "" || fields.Age != 0 || fields.Gender != models.GenderUnknown {
			t.Errorf("Extract(%q) = %+v, want zero defaults", text, fields)
		}
	}
}
