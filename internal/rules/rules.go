// Package rules defines transfer-rule records and loads them, pre-ordered,
// from a schema's transfer_rules tables.
package rules

import "sort"

// SourceRef identifies a sending-side course offering and the minimum GPA
// a grade must meet for the rule to apply.
type SourceRef struct {
	CourseID int     `json:"course_id"`
	OfferNbr int     `json:"offer_nbr"`
	MinGPA   float64 `json:"min_gpa"`
}

// DestRef identifies a receiving-side course offering. Message-only and
// blanket-credit status are read from the resolved catalog offering, not
// stored on the reference.
type DestRef struct {
	CourseID int `json:"course_id"`
	OfferNbr int `json:"offer_nbr"`
}

// Rule is one transfer rule: an ordered set of source offerings mapping to
// an ordered set of destination offerings. Reference order is significant;
// it fixes the left-to-right order of phrases in the generated description.
type Rule struct {
	Key           string
	EffectiveDate string
	Sources       []SourceRef
	Destinations  []DestRef
}

// Description is the synthesis output for one rule. Write-once and fully
// derived; there are no partial updates.
type Description struct {
	RuleKey       string
	EffectiveDate string
	Text          string
}

// SortRefs puts both reference lists into canonical order: course_id, then
// offer_nbr, then min_gpa for sources. The rule queries already emit this
// order; SortRefs re-asserts it for rules built in memory.
func (r *Rule) SortRefs() {
	sort.SliceStable(r.Sources, func(i, j int) bool {
		a, b := r.Sources[i], r.Sources[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if a.OfferNbr != b.OfferNbr {
			return a.OfferNbr < b.OfferNbr
		}
		return a.MinGPA < b.MinGPA
	})
	sort.SliceStable(r.Destinations, func(i, j int) bool {
		a, b := r.Destinations[i], r.Destinations[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		return a.OfferNbr < b.OfferNbr
	})
}
