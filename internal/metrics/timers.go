// Package metrics keeps lap timers for the phases of a run.
package metrics

import "time"

type Timers struct {
	Timers map[string]*Timer `json:"timers,omitempty"`
	last   string
	now    func() time.Time
}

func NewTimers() Timers {
	return Timers{Timers: make(map[string]*Timer), now: time.Now}
}

// set starts timer k, or stops it when already started.
func (ts *Timers) set(k string) {
	if ts.now == nil {
		ts.now = time.Now
	}
	if _, ok := ts.Timers[k]; !ok {
		ts.Timers[k] = &Timer{start: ts.now()}
		return
	}
	ts.Timers[k].Total = ts.now().Sub(ts.Timers[k].start).Seconds()
}

// Set stops the running lap and starts k.
func (ts *Timers) Set(k string) {
	if ts.Timers == nil {
		ts.Timers = make(map[string]*Timer)
	}
	if ts.last != "" {
		ts.set(ts.last)
	}
	ts.set(k)
	ts.last = k
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds"`
}
