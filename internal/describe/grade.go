// Package describe turns transfer rules into deterministic one-line
// descriptions: it resolves course references against the catalog, encodes
// minimum grades and requirement profiles, and assembles the phrases into a
// single "sources => destinations" sentence.
package describe

import "sort"

// Letter-grade step function. The letter at index i covers GPAs from
// gradeBreakpoints[i-1] (inclusive) up to gradeBreakpoints[i] (exclusive).
var (
	gradeBreakpoints = []float64{0.7, 1.0, 1.3, 1.7, 2.0, 2.3, 2.7, 3.0, 3.3, 3.7, 4.0, 4.3}
	gradeLetters     = []string{"P", "D-", "D", "D+", "C-", "C", "C+", "B-", "B", "B+", "A-", "A", "A+"}
)

// MinGrade converts a minimum-GPA threshold to its letter grade. GPAs below
// 0.7 mean any passing grade ("P"); 4.3 and above saturate to "A+".
func MinGrade(minGPA float64) string {
	i := sort.Search(len(gradeBreakpoints), func(i int) bool {
		return gradeBreakpoints[i] > minGPA
	})
	return gradeLetters[i]
}
