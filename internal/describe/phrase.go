package describe

import (
	"fmt"
	"strings"
)

// Oxfordize joins an ordered list of phrases into one grammatical clause,
// with an Oxford comma for three or more items. Zero phrases produce an
// empty clause.
func Oxfordize(things []string, conjunction string) string {
	switch len(things) {
	case 0:
		return ""
	case 1:
		return things[0]
	case 2:
		return fmt.Sprintf("%s %s %s", things[0], conjunction, things[1])
	}
	return fmt.Sprintf("%s, %s %s",
		strings.Join(things[:len(things)-1], ", "), conjunction, things[len(things)-1])
}
