package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ledgertools/ledgerfmt/output"
)

// TimingCollector records phases into a tree. The first phase started
// becomes the root; later phases nest under whichever phase is currently
// running.
type TimingCollector struct {
	mu      sync.Mutex
	root    *phase
	current *phase
}

type phase struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *phase
	children []*phase
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing a phase.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &phase{name: name, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &phaseTimer{collector: c, node: node}
}

// Report writes the timing tree, one line per phase:
//
//	format journal.ledger: 12ms
//	├─ parse: 8ms
//	└─ beautify: 3ms
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}

	name := c.root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	fmt.Fprintf(w, "%s: %s\n", name, formatDuration(c.root.duration()))

	for i, child := range c.root.children {
		reportPhase(w, child, "", i == len(c.root.children)-1, styles)
	}
}

func reportPhase(w io.Writer, node *phase, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	duration := node.duration()
	timing := formatDuration(duration)
	tree := prefix + branch
	if styles != nil {
		tree = styles.Dim(tree)
		if duration >= 100*time.Millisecond {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
	}
	fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, timing)

	for i, child := range node.children {
		reportPhase(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

func (n *phase) duration() time.Duration {
	return n.end.Sub(n.start)
}

// formatDuration shows milliseconds below one second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}

// phaseTimer records into a TimingCollector.
type phaseTimer struct {
	collector *TimingCollector
	node      *phase
}

// End stops the timer and pops the collector's cursor back to the parent.
func (t *phaseTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()
	if t.node.parent != nil {
		t.collector.current = t.node.parent
	}
}

// Child starts a phase nested directly under this one.
func (t *phaseTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &phase{name: name, start: time.Now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &phaseTimer{collector: t.collector, node: node}
}
