package describe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvickery/rule-descriptions/internal/catalog"
	"github.com/cvickery/rule-descriptions/internal/testutil"
)

func TestLogReporterLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(&buf, nil)

	r.Report(Anomaly{
		Side:      SideSource,
		RuleKey:   "QNS01-LEH01-4",
		CourseID:  1234,
		OfferNbr:  3,
		Qualifier: 2,
		Known: []catalog.Offering{
			{CourseID: 1234, OfferNbr: 1, Course: "MATH 120"},
			{CourseID: 1234, OfferNbr: 2, Course: "MATH 120H"},
		},
	})

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "src: unknown offering")
	assert.Contains(t, line, "QNS01-LEH01-4")
	assert.Contains(t, line, "001234:3")
	assert.Contains(t, line, "gpa=2")
	assert.Contains(t, line, "1=MATH 120, 2=MATH 120H")
	assert.Equal(t, 1, r.Count())
}

// Lines from concurrent reporters must not interleave.
func TestLogReporterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(&buf, testutil.NewTestLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(Anomaly{Side: SideDestination, RuleKey: fmt.Sprintf("rule-%03d", i)})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 50)
	assert.Equal(t, 50, r.Count())
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "dst: unknown offering"), "garbled line: %q", line)
	}
}

func TestOpenLogReporter(t *testing.T) {
	dir := t.TempDir()

	r, err := OpenLogReporter(dir, "public", testutil.NewTestLogger(t))
	require.NoError(t, err)

	r.Report(Anomaly{Side: SideSource, RuleKey: "k", CourseID: 1, OfferNbr: 1})
	require.NoError(t, r.Close())

	content, err := os.ReadFile(filepath.Join(dir, "description_errors.public.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "src: unknown offering")
}

func TestOpenLogReporterBadDir(t *testing.T) {
	_, err := OpenLogReporter("/nonexistent/path", "public", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create anomaly log")
}
