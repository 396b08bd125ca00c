package describe

import (
	"fmt"

	"github.com/cvickery/rule-descriptions/internal/catalog"
)

// Requirement-code sentinels. EmptyRequirements is a resolved offering with
// no requirements data; UnresolvedRequirements marks a reference the catalog
// could not resolve at all. The "---" plan count keeps the two cases
// distinguishable in generated text.
const (
	EmptyRequirements      = "--:--:--:000"
	UnresolvedRequirements = "--:--:--:---"
)

// FormatRequirements compresses a requirement profile into its compact
// four-field code: pathway, common-core option, major equivalency, plan
// count. An absent profile yields EmptyRequirements.
func FormatRequirements(p *catalog.RequirementProfile) string {
	if p == nil {
		return EmptyRequirements
	}
	pways := p.Pathways
	if pways == "" {
		pways = "--"
	}
	copt := "--"
	if p.CommonCoreOption {
		copt = "CO"
	}
	equiv := "--"
	if len(p.Equivalencies) > 0 {
		equiv = "ME"
	}
	return fmt.Sprintf("%s:%s:%s:%03d", pways, copt, equiv, len(p.Plans))
}
