package progress

import (
	"strings"
	"sync"
	"time"
)

// Phase is the reporter lifecycle position.
type Phase int

const (
	Idle Phase = iota
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// State is the progress of one batch. The publishing loop writes it, the
// render cycle reads it through Snapshot.
type State struct {
	mu          sync.Mutex
	phase       Phase
	currentFile string
	currentDir  string
	processed   int
	total       int
	success     int
	failed      int
	started     time.Time
	finished    time.Time
	now         func() time.Time
}

func newState(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{now: now}
}

// start resets the counters and enters Running. It is a no-op while a batch
// is already running.
func (s *State) start(total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == Running {
		return false
	}
	if total < 0 {
		total = 0
	}
	s.phase = Running
	s.currentFile, s.currentDir = "", ""
	s.processed, s.success, s.failed = 0, 0, 0
	s.total = total
	s.started = s.now()
	s.finished = time.Time{}
	return true
}

// update records one finished object. Updates outside Running, or beyond
// total, are dropped and reported as false.
func (s *State) update(file string, success bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Running || s.processed >= s.total {
		return false
	}
	s.currentFile = file
	s.currentDir = dirOf(file)
	s.processed++
	if success {
		s.success++
	} else {
		s.failed++
	}
	return true
}

func (s *State) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Running {
		return false
	}
	s.phase = Stopped
	s.finished = s.now()
	return true
}

// Snapshot copies the state under the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:       s.phase,
		CurrentFile: s.currentFile,
		CurrentDir:  s.currentDir,
		Processed:   s.processed,
		Total:       s.total,
		Success:     s.success,
		Failed:      s.failed,
		Started:     s.started,
	}
	switch s.phase {
	case Running:
		snap.Elapsed = s.now().Sub(s.started)
	case Stopped:
		snap.Elapsed = s.finished.Sub(s.started)
	}
	return snap
}

func dirOf(key string) string {
	i := strings.LastIndexByte(key, '/')
	if i < 0 {
		return "/"
	}
	return key[:i+1]
}
