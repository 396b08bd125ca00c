package catalog

import (
	"regexp"
	"strings"
)

// pathwaysRe matches Pathways designations: a Required/Flexible prefix, the
// two-letter core area, and a College/Default/Replacement suffix.
var pathwaysRe = regexp.MustCompile(`^[RF](..)[CDR]$`)

// DeriveProfile computes an offering's RequirementProfile from its catalog
// designation, its semicolon-separated "key:value" attributes string, and
// the academic plans that reference it.
//
// A malformed attributes string (a non-empty segment with no colon) yields
// nil Equivalencies, matching how the descriptions distinguish "unknown"
// from "none".
func DeriveProfile(designation, attributes string, plans []string) RequirementProfile {
	p := RequirementProfile{Plans: plans}

	if m := pathwaysRe.FindStringSubmatch(designation); m != nil {
		p.Pathways = m[1]
	}

	p.CommonCoreOption = strings.HasPrefix(designation, "CO") ||
		strings.Contains(attributes, "COPT")

	p.Equivalencies = majorEquivalencies(attributes)

	return p
}

// majorEquivalencies extracts the values of ME* attributes. Attribute order
// is preserved.
func majorEquivalencies(attributes string) []string {
	equiv := []string{}
	for _, part := range strings.Split(attributes, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			// Attribute string does not follow the key:value convention.
			return nil
		}
		if strings.HasPrefix(strings.TrimSpace(key), "ME") {
			equiv = append(equiv, value)
		}
	}
	return equiv
}
