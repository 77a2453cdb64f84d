package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	clearLine = "\r\x1b[K"
	barWidth  = 30
)

var spinnerFrames = []string{"|", "/", "-", `\`}

// Simple redraws a single status line in place. It needs nothing from the
// terminal beyond carriage return and erase-line.
type Simple struct {
	out      io.Writer
	interval time.Duration

	mu    sync.Mutex // serializes writes to out
	stop  chan struct{}
	done  chan struct{}
	frame int
}

var _ Renderer = (*Simple)(nil)

// NewSimple returns a line renderer writing to out at DefaultInterval.
func NewSimple(out io.Writer) *Simple {
	return &Simple{out: out, interval: DefaultInterval}
}

func (s *Simple) Start(snap SnapshotFunc) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(snap)
}

func (s *Simple) loop(snap SnapshotFunc) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			s.draw(snap())
			s.write("\n")
			return
		case <-ticker.C:
			s.draw(snap())
		}
	}
}

func (s *Simple) draw(sn Snapshot) {
	line := StatusLine(sn, spinnerFrames[s.frame%len(spinnerFrames)])
	s.frame++
	s.write(clearLine + line)
}

func (s *Simple) write(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, str)
}

// Stop halts the redraw loop and waits for its last frame.
func (s *Simple) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

func (s *Simple) Summary(final Snapshot) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	var b strings.Builder
	b.WriteString(bold("Summary") + "\n")
	for _, row := range SummaryRows(final) {
		value := row.Value
		switch {
		case row.Label == "Successful":
			value = green(value)
		case row.Label == "Failed" && final.Failed > 0:
			value = red(value)
		}
		fmt.Fprintf(&b, "  %-18s %s\n", row.Label+":", value)
	}
	s.write(b.String())
}

// StatusLine formats one frame of the single-line display.
func StatusLine(sn Snapshot, spin string) string {
	filled := int(sn.Percent() * barWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	line := fmt.Sprintf("%s [%s] %5.1f%% %d/%d ok:%d fail:%d ETA %s",
		spin, bar, sn.Percent()*100, sn.Processed, sn.Total, sn.Success, sn.Failed, sn.ETAString())
	if sn.CurrentFile != "" {
		line += " | " + sn.CurrentFile
	}
	return line
}
