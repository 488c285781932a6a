package slideshow

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
)

// Config fixes the engine's timing bounds (milliseconds)
type Config struct {
	Interval  int
	MinSpeed  int
	MaxSpeed  int
	Increment int
}

// Engine advances through a snapshot of the gallery's ordered path list on
// its own timer, independent of the store worker. The snapshot is taken at
// Play/Restart time only: gallery edits mid-show never reshuffle or
// truncate the in-flight sequence.
type Engine struct {
	mu    sync.Mutex
	clock clockwork.Clock
	rng   *rand.Rand

	interval  time.Duration
	minSpeed  time.Duration
	maxSpeed  time.Duration
	increment time.Duration

	loop    bool
	shuffle bool

	originalPaths []string
	shuffledPaths []string
	currentIndex  int

	status     Status
	timer      clockwork.Timer
	nextFireAt time.Time
	generation int

	onImageChanged func(path string)
	onEnded        func()
}

func NewEngine(cfg Config, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	e := &Engine{
		clock:     clock,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		interval:  time.Duration(cfg.Interval) * time.Millisecond,
		minSpeed:  time.Duration(cfg.MinSpeed) * time.Millisecond,
		maxSpeed:  time.Duration(cfg.MaxSpeed) * time.Millisecond,
		increment: time.Duration(cfg.Increment) * time.Millisecond,
		status:    StatusStopped,
	}
	e.interval = e.clampInterval(e.interval)
	return e
}

// OnImageChanged registers the current-image notification. Callbacks fire
// outside the engine lock.
func (e *Engine) OnImageChanged(fn func(path string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onImageChanged = fn
}

// OnEnded registers the notification fired when a non-looping show runs
// past its last image
func (e *Engine) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *Engine) clampInterval(d time.Duration) time.Duration {
	if d < e.minSpeed {
		return e.minSpeed
	}
	if d > e.maxSpeed {
		return e.maxSpeed
	}
	return d
}

// schedule arms the tick timer. Callers must hold the lock.
func (e *Engine) schedule(d time.Duration) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.generation++
	gen := e.generation
	e.nextFireAt = e.clock.Now().Add(d)
	e.timer = e.clock.AfterFunc(d, func() { e.tick(gen) })
}

// cancelTimer invalidates any pending fire. Callers must hold the lock.
func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation++
}

func (e *Engine) activePaths() []string {
	if e.shuffle {
		return e.shuffledPaths
	}
	return e.originalPaths
}

// reshuffle builds a fresh permutation of the snapshot. Callers must hold
// the lock.
func (e *Engine) reshuffle() {
	e.shuffledPaths = append([]string(nil), e.originalPaths...)
	e.rng.Shuffle(len(e.shuffledPaths), func(i, j int) {
		e.shuffledPaths[i], e.shuffledPaths[j] = e.shuffledPaths[j], e.shuffledPaths[i]
	})
}

// startLocked seeds playback from index 0 of the current snapshot and
// returns the first path to display, or "" when the snapshot is empty
func (e *Engine) startLocked() string {
	if len(e.originalPaths) == 0 {
		return ""
	}
	e.currentIndex = 0
	if e.shuffle {
		e.reshuffle()
	}
	e.status = StatusPlaying
	e.schedule(e.interval)
	return e.activePaths()[0]
}

// Play snapshots the given ordered path list and begins periodic
// advancement. No-ops when the list is empty.
func (e *Engine) Play(paths []string) {
	e.mu.Lock()
	e.originalPaths = append([]string(nil), paths...)
	e.shuffledPaths = nil
	first := e.startLocked()
	fn := e.onImageChanged
	e.mu.Unlock()

	if first == "" {
		log.Printf("slideshow: play requested with no images")
		return
	}
	if fn != nil {
		fn(first)
	}
}

// Restart re-seeds playback from index 0 on the existing snapshot
func (e *Engine) Restart() {
	e.mu.Lock()
	first := e.startLocked()
	fn := e.onImageChanged
	e.mu.Unlock()

	if first == "" {
		return
	}
	if fn != nil {
		fn(first)
	}
}

// Pause halts the timer without resetting the current index
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusPlaying {
		return
	}
	e.cancelTimer()
	e.status = StatusPaused
}

// Resume restarts the timer only when a snapshot is present and playback
// is not already running. The full interval applies to the next tick.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusPlaying || len(e.originalPaths) == 0 {
		return
	}
	e.status = StatusPlaying
	e.schedule(e.interval)
}

// Stop halts the timer and resets the playback position
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimer()
	e.status = StatusStopped
	e.currentIndex = 0
}

// ChangeSpeed clamps the new interval to the configured bounds. While
// playing, the remaining wait on the current tick is preserved when it is
// shorter than the new interval, otherwise it is cut down to the new
// interval. Speeding up never extends the current wait and slowing down
// never fires abruptly.
func (e *Engine) ChangeSpeed(ms int) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interval = e.clampInterval(time.Duration(ms) * time.Millisecond)

	if e.status == StatusPlaying {
		remaining := e.nextFireAt.Sub(e.clock.Now())
		if remaining < 0 {
			remaining = 0
		}
		if remaining > e.interval {
			e.schedule(e.interval)
		} else {
			e.schedule(remaining)
		}
	}
	return e.interval
}

func (e *Engine) SetLoop(loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loop = loop
}

func (e *Engine) SetShuffle(shuffle bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shuffle = shuffle
	if shuffle && e.shuffledPaths == nil && len(e.originalPaths) > 0 {
		e.reshuffle()
	}
}

// tick advances to the next image. Stale timer generations (from pause,
// stop or a speed change) are ignored.
func (e *Engine) tick(gen int) {
	e.mu.Lock()
	if gen != e.generation || e.status != StatusPlaying || len(e.originalPaths) == 0 {
		e.mu.Unlock()
		return
	}

	images := e.activePaths()
	nextIndex := e.currentIndex + 1

	if nextIndex >= len(images) {
		if !e.loop {
			e.cancelTimer()
			e.status = StatusStopped
			e.currentIndex = 0
			ended := e.onEnded
			e.mu.Unlock()
			if ended != nil {
				ended()
			}
			return
		}
		// each full cycle gets a fresh permutation
		if e.shuffle {
			e.reshuffle()
			images = e.shuffledPaths
		}
		nextIndex = 0
	}

	e.currentIndex = nextIndex
	current := images[nextIndex]
	e.schedule(e.interval)
	changed := e.onImageChanged
	e.mu.Unlock()

	if changed != nil {
		changed(current)
	}
}

// State is a snapshot of the engine for status queries
type State struct {
	Status       Status `json:"status"`
	CurrentIndex int    `json:"current_index"`
	CurrentPath  string `json:"current_path,omitempty"`
	IntervalMS   int    `json:"interval_ms"`
	Loop         bool   `json:"loop"`
	Shuffle      bool   `json:"shuffle"`
	PathCount    int    `json:"path_count"`
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Status:       e.status,
		CurrentIndex: e.currentIndex,
		IntervalMS:   int(e.interval / time.Millisecond),
		Loop:         e.loop,
		Shuffle:      e.shuffle,
		PathCount:    len(e.originalPaths),
	}
	if paths := e.activePaths(); len(paths) > 0 && e.status != StatusStopped {
		s.CurrentPath = paths[e.currentIndex]
	}
	return s
}

// SpeedSettings reports min, max, increment and current interval in
// milliseconds, for building speed controls
func (e *Engine) SpeedSettings() (min, max, increment, current int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.minSpeed / time.Millisecond),
		int(e.maxSpeed / time.Millisecond),
		int(e.increment / time.Millisecond),
		int(e.interval / time.Millisecond)
}
