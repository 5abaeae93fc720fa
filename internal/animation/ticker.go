package animation

import "sort"

// Frame is passed to observers once per tick.
type Frame struct {
	Index uint64
	Time  float64
	Delta float64
}

// Observer runs every tick after timelines and tasks, for unbounded
// per-frame work such as trackers.
type Observer interface {
	Observe(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) Observe(f Frame) { fn(f) }

// Task is a cancellable delayed call scheduled on a Ticker.
type Task struct {
	due       float64
	seq       uint64
	fn        func()
	cancelled bool
	fired     bool
}

// Cancel prevents the task from firing. Safe on nil and after firing.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Active reports whether the task is still waiting to fire.
func (t *Task) Active() bool {
	return t != nil && !t.cancelled && !t.fired
}

// Due is the ticker time the task fires at.
func (t *Task) Due() float64 {
	if t == nil {
		return 0
	}
	return t.due
}

// Ticker is the shared render-loop clock. Each Tick advances playing
// timelines, then fires due tasks, then runs observers. Not safe for
// concurrent use; drive it from the render goroutine.
type Ticker struct {
	frame     uint64
	now       float64
	seq       uint64
	timelines []*Timeline
	tasks     []*Task
	observers []observerEntry
}

type observerEntry struct {
	id uint64
	o  Observer
}

// NewTicker creates a ticker at time zero.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Frame returns the index of the last tick.
func (t *Ticker) Frame() uint64 { return t.frame }

// Now returns simulated seconds since creation.
func (t *Ticker) Now() float64 { return t.now }

// Add registers tl without starting it.
func (t *Ticker) Add(tl *Timeline) *Timeline {
	if tl == nil || tl.killed {
		return tl
	}
	tl.ticker = t
	if tl.played && !tl.completed {
		t.attach(tl)
	}
	return tl
}

// Play registers tl and starts it.
func (t *Ticker) Play(tl *Timeline) *Timeline {
	if tl == nil {
		return nil
	}
	t.Add(tl)
	tl.Play()
	return tl
}

// Active returns the number of registered, unfinished timelines.
func (t *Ticker) Active() int { return len(t.timelines) }

// Pending returns the number of tasks waiting to fire.
func (t *Ticker) Pending() int {
	n := 0
	for _, task := range t.tasks {
		if task.Active() {
			n++
		}
	}
	return n
}

// After schedules fn to run once delay seconds from now.
func (t *Ticker) After(delay float64, fn func()) *Task {
	if delay < 0 {
		delay = 0
	}
	t.seq++
	task := &Task{due: t.now + delay, seq: t.seq, fn: fn}
	t.tasks = append(t.tasks, task)
	return task
}

// AddObserver registers o and returns a func that unregisters it.
func (t *Ticker) AddObserver(o Observer) (remove func()) {
	t.seq++
	id := t.seq
	t.observers = append(t.observers, observerEntry{id: id, o: o})
	return func() {
		for i, e := range t.observers {
			if e.id == id {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Observers returns the number of registered observers.
func (t *Ticker) Observers() int { return len(t.observers) }

// Tick advances the clock by dt seconds.
func (t *Ticker) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t.frame++
	t.now += dt

	timelines := append([]*Timeline(nil), t.timelines...)
	for _, tl := range timelines {
		if tl.advance(dt, t.frame) {
			t.remove(tl)
		}
	}

	t.runTasks()

	f := Frame{Index: t.frame, Time: t.now, Delta: dt}
	for _, e := range append([]observerEntry(nil), t.observers...) {
		e.o.Observe(f)
	}
}

// Step ticks n times by dt.
func (t *Ticker) Step(n int, dt float64) {
	for i := 0; i < n; i++ {
		t.Tick(dt)
	}
}

// Advance ticks by dt until at least seconds of simulated time have passed.
func (t *Ticker) Advance(seconds, dt float64) {
	if dt <= 0 {
		return
	}
	target := t.now + seconds
	for t.now < target-epsilon {
		t.Tick(dt)
	}
}

func (t *Ticker) runTasks() {
	var due, waiting []*Task
	for _, task := range t.tasks {
		switch {
		case !task.Active():
		case task.due <= t.now+epsilon:
			due = append(due, task)
		default:
			waiting = append(waiting, task)
		}
	}
	t.tasks = waiting

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, task := range due {
		if !task.Active() {
			continue
		}
		task.fired = true
		if task.fn != nil {
			task.fn()
		}
	}
}

func (t *Ticker) attach(tl *Timeline) {
	for _, existing := range t.timelines {
		if existing == tl {
			return
		}
	}
	t.timelines = append(t.timelines, tl)
}

func (t *Ticker) remove(tl *Timeline) {
	for i, existing := range t.timelines {
		if existing == tl {
			t.timelines = append(t.timelines[:i], t.timelines[i+1:]...)
			return
		}
	}
}
