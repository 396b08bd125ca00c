package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortRefs(t *testing.T) {
	r := Rule{
		Key: "k",
		Sources: []SourceRef{
			{CourseID: 200, OfferNbr: 1, MinGPA: 2.0},
			{CourseID: 100, OfferNbr: 2, MinGPA: 0},
			{CourseID: 100, OfferNbr: 1, MinGPA: 3.0},
			{CourseID: 100, OfferNbr: 1, MinGPA: 2.0},
		},
		Destinations: []DestRef{
			{CourseID: 300, OfferNbr: 2},
			{CourseID: 300, OfferNbr: 1},
			{CourseID: 100, OfferNbr: 1},
		},
	}

	r.SortRefs()

	assert.Equal(t, []SourceRef{
		{CourseID: 100, OfferNbr: 1, MinGPA: 2.0},
		{CourseID: 100, OfferNbr: 1, MinGPA: 3.0},
		{CourseID: 100, OfferNbr: 2, MinGPA: 0},
		{CourseID: 200, OfferNbr: 1, MinGPA: 2.0},
	}, r.Sources)

	assert.Equal(t, []DestRef{
		{CourseID: 100, OfferNbr: 1},
		{CourseID: 300, OfferNbr: 1},
		{CourseID: 300, OfferNbr: 2},
	}, r.Destinations)
}
