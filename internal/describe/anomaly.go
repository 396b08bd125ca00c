package describe

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cvickery/rule-descriptions/internal/catalog"
)

// Rule sides, used to tag which reference list an anomaly came from.
const (
	SideSource      = "src"
	SideDestination = "dst"
)

// Anomaly records a rule reference to a course offering the catalog does
// not know about: either the course_id is entirely absent, or no offering
// under it carries the referenced offer_nbr.
type Anomaly struct {
	Side     string
	RuleKey  string
	CourseID int
	OfferNbr int

	// Qualifier is the numeric value attached to the reference; the
	// minimum GPA for source references, zero for destinations.
	Qualifier float64

	// Known lists every catalog offering under the course_id, for
	// diagnosing whether the rule points at a retired offer_nbr or at a
	// course that never existed.
	Known []catalog.Offering
}

// String renders the anomaly as a single human-readable line.
func (a Anomaly) String() string {
	known := make([]string, len(a.Known))
	for i, o := range a.Known {
		known[i] = fmt.Sprintf("%d=%s", o.OfferNbr, o.Course)
	}
	return fmt.Sprintf("%s: unknown offering %-20s %06d:%d gpa=%-6g known=[%s]",
		a.Side, a.RuleKey, a.CourseID, a.OfferNbr, a.Qualifier, strings.Join(known, ", "))
}

// Reporter is the sink for anomalies found during synthesis. Report must be
// safe for concurrent use and must never fail outward; a broken sink cannot
// be allowed to abort description generation.
type Reporter interface {
	Report(a Anomaly)
}

// discardReporter drops anomalies. Used when no sink is configured.
type discardReporter struct{}

func (discardReporter) Report(Anomaly) {}

// Discard returns a Reporter that drops everything.
func Discard() Reporter { return discardReporter{} }

// LogReporter appends one line per anomaly to a writer. A mutex keeps lines
// from interleaving when synthesis runs in parallel.
type LogReporter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	logger *slog.Logger
	count  int
}

// NewLogReporter wraps a writer as an anomaly sink. If logger is nil a
// discard logger is used.
func NewLogReporter(w io.Writer, logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogReporter{w: w, logger: logger}
}

// OpenLogReporter creates the per-run anomaly log for a schema, named
// description_errors.<schema>.log under dir.
func OpenLogReporter(dir, schema string, logger *slog.Logger) (*LogReporter, error) {
	path := filepath.Join(dir, fmt.Sprintf("description_errors.%s.log", schema))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create anomaly log %s: %w", path, err)
	}
	r := NewLogReporter(f, logger)
	r.closer = f
	return r, nil
}

// Report writes the anomaly line. Write errors are logged at debug level
// and otherwise swallowed.
func (r *LogReporter) Report(a Anomaly) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	if _, err := fmt.Fprintln(r.w, a.String()); err != nil {
		r.logger.Debug("anomaly log write failed", slog.String("error", err.Error()))
	}
}

// Count returns the number of anomalies reported so far.
func (r *LogReporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close closes the underlying log file, if the reporter owns one.
func (r *LogReporter) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
