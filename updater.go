// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"log"

	"github.com/pkg/errors"
)

// A Circuit is anything that can subscribe to wire changes. Update is called
// by the Updater whenever one of the wires the circuit subscribed to changes
// state.
//
type Circuit interface {
	Name() string
	Update() error
}

// DefaultMaxSteps is the default value of Updater.MaxSteps.
//
const DefaultMaxSteps = 1 << 16

// constant wires, present in every Updater.
const (
	wireGND = iota
	wireVDD
	wireCount
)

const recentSize = 16

// Updater is a simulation session. It owns the state of all the wires
// allocated through it, the subscription table that maps wires to circuits
// and the queue of pending wire change events.
//
// An Updater is not safe for concurrent use. Independent Updaters can be used
// concurrently.
//
type Updater struct {
	// MaxSteps is the maximum number of events processed by a single call
	// to Run before it gives up with an *UnstableError. Changes of wires
	// that no circuit subscribed to are not queued and do not count.
	MaxSteps int
	// AutoRun controls whether bus writes made outside of Run trigger a
	// Run. If false, callers must call Run themselves.
	AutoRun bool
	// Logger, if not nil, receives a trace of circuit updates.
	Logger *log.Logger

	state []bool      // wire states
	subs  [][]Circuit // subscribers, by wire
	queue []int       // pending wire change events
	head  int

	draining bool
	err      error // sticky failure

	events uint64
	steps  uint64
	seq    int

	recent [recentSize]Circuit
	rpos   int
	rlen   int
}

// NewUpdater returns a new, empty simulation session.
//
func NewUpdater() *Updater {
	return &Updater{
		MaxSteps: DefaultMaxSteps,
		AutoRun:  true,
		state:    []bool{wireGND: false, wireVDD: true},
		subs:     make([][]Circuit, wireCount),
	}
}

// alloc allocates n new wires and returns their numbers.
//
func (u *Updater) alloc(n int) []int {
	ws := make([]int, n)
	for i := range ws {
		ws[i] = len(u.state)
		u.state = append(u.state, false)
		u.subs = append(u.subs, nil)
	}
	return ws
}

func (u *Updater) nextID() int {
	u.seq++
	return u.seq
}

// NewBus returns a new bus of the given width with all its wires set to 0.
//
func (u *Updater) NewBus(width int) *Bus {
	if width <= 0 {
		panic(errors.Errorf("invalid bus width %d", width))
	}
	return &Bus{u: u, ws: u.alloc(width)}
}

// BusValue returns a new bus of the given width initialized to the low order
// bits of v. The initial value does not generate any event.
//
func (u *Updater) BusValue(width int, v uint64) *Bus {
	b := u.NewBus(width)
	for i, w := range b.ws {
		if i < 64 {
			u.state[w] = v&(1<<uint(i)) != 0
		}
	}
	return b
}

// get returns the state of wire w. u may be nil for constant wires.
//
func (u *Updater) get(w int) bool {
	if w < wireCount {
		return w == wireVDD
	}
	return u.state[w]
}

// set sets the state of wire w and queues a change event if the state
// actually changed. It returns true if it did.
//
func (u *Updater) set(w int, v bool) bool {
	if u.state[w] == v {
		return false
	}
	u.state[w] = v
	u.notify(w)
	return true
}

// notify counts a change event for wire w and queues it if some circuit
// subscribed to w. Events on wires nobody listens to do not count against
// MaxSteps.
//
func (u *Updater) notify(w int) {
	u.events++
	if len(u.subs[w]) > 0 {
		u.queue = append(u.queue, w)
	}
}

func (u *Updater) pop() int {
	w := u.queue[u.head]
	u.head++
	if u.head == len(u.queue) {
		u.queue = u.queue[:0]
		u.head = 0
	}
	return w
}

func (u *Updater) dropPending() {
	u.queue = u.queue[:0]
	u.head = 0
}

// Subscribe registers c for updates whenever a wire of any of the given
// buses changes. Subscribing twice to the same wire has no effect. Constant
// wires never change and are ignored.
//
func (u *Updater) Subscribe(c Circuit, buses ...*Bus) {
	for _, b := range buses {
		u.subscribe(c, u.own(b))
	}
}

// Unsubscribe is the inverse of Subscribe.
//
func (u *Updater) Unsubscribe(c Circuit, buses ...*Bus) {
	for _, b := range buses {
		u.unsubscribe(c, u.own(b))
	}
}

// own returns b's wires after checking that b belongs to u.
//
func (u *Updater) own(b *Bus) []int {
	if b.u != nil && b.u != u {
		panic("bus belongs to another Updater")
	}
	return b.ws
}

func (u *Updater) subscribe(c Circuit, ws []int) {
L:
	for _, w := range ws {
		if w < wireCount {
			continue
		}
		for _, s := range u.subs[w] {
			if s == c {
				continue L
			}
		}
		u.subs[w] = append(u.subs[w], c)
	}
}

func (u *Updater) unsubscribe(c Circuit, ws []int) {
	for _, w := range ws {
		if w < wireCount {
			continue
		}
		s := u.subs[w]
		for i := range s {
			if s[i] == c {
				// keep subscription order stable
				u.subs[w] = append(s[:i], s[i+1:]...)
				break
			}
		}
	}
}

func (u *Updater) touched(c Circuit) {
	u.recent[u.rpos] = c
	u.rpos = (u.rpos + 1) % recentSize
	if u.rlen < recentSize {
		u.rlen++
	}
	if u.Logger != nil {
		u.Logger.Printf("update %s", circuitName(c))
	}
}

func (u *Updater) lastTouched() []Circuit {
	r := make([]Circuit, 0, u.rlen)
	for i := u.rpos - u.rlen; i < u.rpos; i++ {
		r = append(r, u.recent[(i+recentSize)%recentSize])
	}
	return r
}

// Run processes pending events in FIFO order until the queue is empty. For
// each event, the circuits subscribed to the event's wire are updated, which
// may queue further events.
//
// If the queue is not empty after MaxSteps events, Run fails with an
// *UnstableError and the Updater stays in a failed state until Reset is
// called. If a circuit update fails, the remaining events are dropped and the
// error is returned.
//
// Calling Run while it is already running (i.e. from a circuit update) is a
// no-op.
//
func (u *Updater) Run() error {
	if u.err != nil {
		return u.err
	}
	if u.draining {
		return nil
	}
	u.draining = true
	defer func() { u.draining = false }()

	max := u.MaxSteps
	if max <= 0 {
		max = DefaultMaxSteps
	}
	for steps := 0; u.head < len(u.queue); steps++ {
		if steps >= max {
			u.err = &UnstableError{Steps: steps, Recent: u.lastTouched()}
			if u.Logger != nil {
				u.Logger.Print(u.err)
			}
			return u.err
		}
		w := u.pop()
		u.steps++
		subs := u.subs[w]
		if len(subs) == 0 {
			continue
		}
		// updates may change subscriptions
		cs := make([]Circuit, len(subs))
		copy(cs, subs)
		for _, c := range cs {
			u.touched(c)
			if err := c.Update(); err != nil {
				u.dropPending()
				return errors.WithMessage(err, "update "+circuitName(c))
			}
		}
	}
	return nil
}

// Evaluate runs c's Update as a single batch: any events it generates are
// queued and processed once Update returns (provided that AutoRun is set).
// Parts are evaluated once upon creation and after each Connect.
//
func (u *Updater) Evaluate(c Circuit) error {
	if u.draining {
		u.touched(c)
		return c.Update()
	}
	if u.err != nil {
		return u.err
	}
	u.draining = true
	u.touched(c)
	err := c.Update()
	u.draining = false
	if err != nil {
		u.dropPending()
		return errors.WithMessage(err, "update "+circuitName(c))
	}
	return u.kick()
}

// kick runs the event queue if the Updater is idle and AutoRun is set.
//
func (u *Updater) kick() error {
	if u.err != nil {
		return u.err
	}
	if u.draining || !u.AutoRun {
		return nil
	}
	return u.Run()
}

// Reset clears the event queue and any failure state. Wires and
// subscriptions are left untouched.
//
func (u *Updater) Reset() {
	u.dropPending()
	u.err = nil
	u.draining = false
	u.rpos, u.rlen = 0, 0
	u.recent = [recentSize]Circuit{}
}

// Err returns the failure that put the Updater in a failed state, if any.
//
func (u *Updater) Err() error { return u.err }

// Idle returns true if Run is not running.
//
func (u *Updater) Idle() bool { return !u.draining }

// Pending returns the number of queued events.
//
func (u *Updater) Pending() int { return len(u.queue) - u.head }

// Events returns the total number of wire change events generated so far.
//
func (u *Updater) Events() uint64 { return u.events }

// Steps returns the total number of events processed so far.
//
func (u *Updater) Steps() uint64 { return u.steps }

// Wires returns the number of wires allocated, including the two constant
// wires.
//
func (u *Updater) Wires() int { return len(u.state) }
