package patient

import (
	"sort"
	"strings"

	"github.com/medanalyzer/platform/pkg/common/models"
)

// SimilarMatch pairs a candidate patient with its name-similarity score.
// Scores are advisory only: identity resolution always uses exact
// normalized-name matching, and similarity is exposed purely so operators
// can surface likely duplicate registrations.
type SimilarMatch struct {
	Patient Patient `json:"patient"`
	Score   float64 `json:"score"`
}

const defaultSimilarityThreshold = 0.85

// SimilarPatients scores candidates against the given name and returns
// those at or above the threshold, best first.
func SimilarPatients(candidates []Patient, name string, threshold float64) []SimilarMatch {
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	target := strings.ToLower(models.NormalizeName(name))
	if target == "" {
		return nil
	}

	var matches []SimilarMatch
	for _, candidate := range candidates {
		score := jaroWinkler(strings.ToLower(candidate.Name), target)
		if score >= threshold {
			matches = append(matches, SimilarMatch{Patient: candidate, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

func jaroWinkler(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if s1 == "" || s2 == "" {
		return 0
	}

	matchDistance := max(len(s1), len(s2))/2 - 1
	if matchDistance < 0 {
		matchDistance = 0
	}

	s1Matches := make([]bool, len(s1))
	s2Matches := make([]bool, len(s2))

	matches := 0
	transpositions := 0

	for i := range s1 {
		start := max(0, i-matchDistance)
		end := min(i+matchDistance+1, len(s2))
		for j := start; j < end; j++ {
			if s2Matches[j] || s1[i] != s2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	k := 0
	for i := range s1 {
		if !s1Matches[i] {
			continue
		}
		for ; !s2Matches[k]; k++ {
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	transpositions /= 2

	jaro := (float64(matches)/float64(len(s1)) + float64(matches)/float64(len(s2)) + float64(matches-transpositions)/float64(matches)) / 3

	prefix := 0
	for i := 0; i < min(4, min(len(s1), len(s2))); i++ {
		if s1[i] == s2[i] {
			prefix++
		} else {
			break
		}
	}

	return jaro + float64(prefix)*0.1*(1-jaro)
}
