package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	collector := FromContext(context.Background())
	assert.NotZero(t, collector)

	// Must be safe to use without panicking.
	timer := collector.Start("anything")
	timer.Child("nested").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestWithCollectorRoundTrip(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	assert.Equal[Collector](t, collector, FromContext(ctx))
}

func TestTimingCollectorReport(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("format journal.ledger")
	parse := root.Child("parse")
	parse.End()
	beautify := root.Child("beautify")
	beautify.Child("directives").End()
	beautify.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "format journal.ledger: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ parse: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ beautify: "))
	assert.True(t, strings.HasPrefix(lines[3], "   └─ directives: "))
}

func TestTimingCollectorSequentialPhasesStaySiblings(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("run")
	first := collector.Start("first")
	first.End()
	second := collector.Start("second")
	second.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	report := buf.String()
	assert.Contains(t, report, "├─ first: ")
	assert.Contains(t, report, "└─ second: ")
}

func TestEmptyCollectorReportsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}
