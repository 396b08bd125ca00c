// Package catalog provides an immutable, in-memory snapshot of the CUNY
// course catalog, keyed by course_id. A course_id is shared by every
// offering of the same course across catalog revisions; (course_id,
// offer_nbr) identifies one concrete offering.
package catalog

import (
	"fmt"
	"sort"
)

// RequirementProfile holds the academic-requirement attributes an offering
// can satisfy. A nil *RequirementProfile means no requirements data exists
// for the offering.
type RequirementProfile struct {
	// Pathways is the Pathways core area abbreviation, empty when none.
	Pathways string `json:"pways"`

	// CommonCoreOption reports whether the course carries the COPT designation.
	CommonCoreOption bool `json:"copt"`

	// Equivalencies lists Major Equivalency names, in attribute order.
	Equivalencies []string `json:"equiv"`

	// Plans lists academic plans with at least one requirement the course
	// satisfies, in plan-name order.
	Plans []string `json:"plans"`
}

// Credits is an offering's credit value. Courses whose minimum and maximum
// credits differ carry a variable credit value.
type Credits struct {
	Value  float64
	Varies bool
}

// String renders the credit value the way rule descriptions expect.
func (c Credits) String() string {
	if c.Varies {
		return "varies"
	}
	return fmt.Sprintf("%g", c.Value)
}

// Offering is one concrete catalog entry for a course.
type Offering struct {
	CourseID    int
	OfferNbr    int
	Institution string

	// Course is the display title, discipline plus catalog number
	// (e.g. "ENGL 101").
	Course string

	Credits Credits

	// IsMessage reports a message-only (MLA/MNL designation) course.
	IsMessage bool

	// IsBlanket reports a blanket-credit (BKCR attribute) course.
	IsBlanket bool

	Status string
	Career string

	// Requirements is nil when the offering has no requirements data.
	Requirements *RequirementProfile
}

// Key returns the unique (course_id, offer_nbr) key as a display string.
func (o Offering) Key() string {
	return fmt.Sprintf("%06d:%d", o.CourseID, o.OfferNbr)
}

// Catalog maps a course_id to all offerings sharing it. Built once per run
// and read-only afterward, so it is safe to share across goroutines.
type Catalog struct {
	courses map[int][]Offering
	size    int
}

// New builds a Catalog from a snapshot of offerings. Offerings sharing a
// course_id are kept sorted by offer_nbr; that order drives alias lists.
func New(offerings []Offering) *Catalog {
	courses := make(map[int][]Offering)
	for _, o := range offerings {
		courses[o.CourseID] = append(courses[o.CourseID], o)
	}
	for id := range courses {
		sibs := courses[id]
		sort.Slice(sibs, func(i, j int) bool { return sibs[i].OfferNbr < sibs[j].OfferNbr })
	}
	return &Catalog{courses: courses, size: len(offerings)}
}

// Len returns the number of offerings in the catalog.
func (c *Catalog) Len() int { return c.size }

// Courses returns the number of distinct course_ids in the catalog.
func (c *Catalog) Courses() int { return len(c.courses) }

// Offerings returns all offerings sharing courseID, in offer_nbr order.
// The returned slice is shared; callers must not modify it.
func (c *Catalog) Offerings(courseID int) []Offering {
	return c.courses[courseID]
}

// Resolution is the outcome of resolving a (course_id, offer_nbr) reference
// against the catalog. When the exact offering is unknown Offering is nil;
// the sibling titles and the full known set are still populated so callers
// can surface aliases and diagnose bad references.
type Resolution struct {
	// Offering is the exact (course_id, offer_nbr) match, nil when unknown.
	Offering *Offering

	// Aliases holds the titles of sibling offerings (same course_id,
	// different offer_nbr), in offer_nbr order.
	Aliases []string

	// Known holds every offering under the course_id, for diagnostics.
	Known []Offering
}

// Found reports whether the exact offering was present in the catalog.
func (r Resolution) Found() bool { return r.Offering != nil }

// Resolve looks up a (course_id, offer_nbr) reference. The same course_id
// can recur across catalog revisions under different offer_nbrs with
// slightly different titles; those siblings come back as aliases whether or
// not the exact offering is found.
func (c *Catalog) Resolve(courseID, offerNbr int) Resolution {
	known := c.courses[courseID]
	res := Resolution{Known: known}
	for i := range known {
		if known[i].OfferNbr == offerNbr {
			res.Offering = &known[i]
		} else {
			res.Aliases = append(res.Aliases, known[i].Course)
		}
	}
	return res
}
