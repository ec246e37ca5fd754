package analyzer

import (
	"fmt"

	"github.com/anime-shed/photo-inspector-go/internal/logger"

	"github.com/sirupsen/logrus"
)

// trace is the diagnostic trail of a single analysis call. Lines are always
// logged at debug level and only retained when the caller asked for them.
type trace struct {
	entry *logrus.Entry
	keep  bool
	lines []string
}

func newTrace(entry *logrus.Entry, keep bool) *trace {
	if entry == nil {
		entry = logger.WithField("component", "analyzer")
	}
	return &trace{entry: entry, keep: keep}
}

func (t *trace) addf(stage, format string, args ...interface{}) {
	if t == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	t.entry.WithField("stage", stage).Debug(line)
	if t.keep {
		t.lines = append(t.lines, stage+": "+line)
	}
}

// Lines returns the retained trail, nil when not kept
func (t *trace) Lines() []string {
	if t == nil {
		return nil
	}
	return t.lines
}
