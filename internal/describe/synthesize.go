package describe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cvickery/rule-descriptions/internal/catalog"
	"github.com/cvickery/rule-descriptions/internal/rules"
)

// placeholderCourse stands in for a reference the catalog cannot resolve.
const placeholderCourse = "No course"

// Synthesizer turns one rule at a time into its description text. It holds
// only read-only state, so a single Synthesizer can serve concurrent
// Describe calls.
type Synthesizer struct {
	catalog  *catalog.Catalog
	reporter Reporter
	logger   *slog.Logger
}

// NewSynthesizer creates a Synthesizer over an already-built catalog.
// A nil reporter discards anomalies; a nil logger discards log output.
func NewSynthesizer(cat *catalog.Catalog, reporter Reporter, logger *slog.Logger) *Synthesizer {
	if reporter == nil {
		reporter = Discard()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synthesizer{catalog: cat, reporter: reporter, logger: logger}
}

// Describe produces the description for one rule. Every rule gets a
// description: references the catalog cannot resolve degrade to placeholder
// phrases and emit one anomaly each, and an empty reference list yields an
// empty clause on that side. Describe never fails outward.
func (s *Synthesizer) Describe(rule rules.Rule) rules.Description {
	srcPhrases := make([]string, 0, len(rule.Sources))
	for _, ref := range rule.Sources {
		srcPhrases = append(srcPhrases, s.sourcePhrase(rule.Key, ref))
	}

	dstPhrases := make([]string, 0, len(rule.Destinations))
	for _, ref := range rule.Destinations {
		dstPhrases = append(dstPhrases, s.destinationPhrase(rule.Key, ref))
	}

	return rules.Description{
		RuleKey:       rule.Key,
		EffectiveDate: rule.EffectiveDate,
		Text: fmt.Sprintf("%s => %s",
			Oxfordize(srcPhrases, "and"), Oxfordize(dstPhrases, "and")),
	}
}

// sourcePhrase renders one sending-side reference:
// "{course}{ (=aliases)} {letter} [{code}]".
func (s *Synthesizer) sourcePhrase(ruleKey string, ref rules.SourceRef) string {
	res := s.catalog.Resolve(ref.CourseID, ref.OfferNbr)

	course := placeholderCourse
	letter := "P"
	code := UnresolvedRequirements
	if res.Found() {
		course = res.Offering.Course
		letter = MinGrade(ref.MinGPA)
		code = FormatRequirements(res.Offering.Requirements)
	} else {
		s.reporter.Report(Anomaly{
			Side:      SideSource,
			RuleKey:   ruleKey,
			CourseID:  ref.CourseID,
			OfferNbr:  ref.OfferNbr,
			Qualifier: ref.MinGPA,
			Known:     res.Known,
		})
	}

	return fmt.Sprintf("%s%s %s [%s]", course, aliasList(res.Aliases), letter, code)
}

// destinationPhrase renders one receiving-side reference:
// "{course}{ (=aliases)} {M|-}{B|-} [{code}]". The flag letters mark
// message-only and blanket-credit offerings.
func (s *Synthesizer) destinationPhrase(ruleKey string, ref rules.DestRef) string {
	res := s.catalog.Resolve(ref.CourseID, ref.OfferNbr)

	course := placeholderCourse
	flags := "--"
	code := UnresolvedRequirements
	if res.Found() {
		course = res.Offering.Course
		flags = flagLetters(res.Offering)
		code = FormatRequirements(res.Offering.Requirements)
	} else {
		s.reporter.Report(Anomaly{
			Side:     SideDestination,
			RuleKey:  ruleKey,
			CourseID: ref.CourseID,
			OfferNbr: ref.OfferNbr,
			Known:    res.Known,
		})
	}

	return fmt.Sprintf("%s%s %s [%s]", course, aliasList(res.Aliases), flags, code)
}

// aliasList renders sibling-offering titles as a parenthetical, or nothing
// when there are none.
func aliasList(aliases []string) string {
	if len(aliases) == 0 {
		return ""
	}
	return fmt.Sprintf(" (=%s)", strings.Join(aliases, ","))
}

// flagLetters renders the message-only and blanket-credit flags.
func flagLetters(o *catalog.Offering) string {
	m, b := "-", "-"
	if o.IsMessage {
		m = "M"
	}
	if o.IsBlanket {
		b = "B"
	}
	return m + b
}
