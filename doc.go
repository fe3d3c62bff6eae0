// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package evsim provides an event driven simulator for digital logic circuits
and an API to compose basic components (logic gates, muxers, etc.) into more
complex ones.

A simulation session is an Updater. It owns the wires: single bit cells
grouped into Buses. Writing a Signal to a Bus changes the state of its
wires. Each wire that actually changes state queues an event and the Updater
calls the Update method of every circuit subscribed to that wire. Updates may
in turn write to other buses, queuing more events, until the circuit settles
(no more wire changes) or Updater.MaxSteps events have been processed, in
which case Run fails with an *UnstableError.

Events are processed in FIFO order and there is a single draining loop per
stimulus: writes made from within an update only queue events.

Parts are built from a PartSpec (a blueprint). A part has named input and
output ports, each backed by a Terminal that copies signals between the
buses outside of the part and the buses inside it. Terminals can invert
signals (bubbles) and can be gated by an enable line (tri-state). Composite
parts create sub-parts from their MakeFn, wiring them with internal buses:

	u := evsim.NewUpdater()
	a, b := u.NewBus(4), u.NewBus(4)
	and, err := hwlib.And.NewPart(u, evsim.W{"a": a, "b": b})
	if err != nil {
		// ...
	}
	a.WriteUint64(0xc)
	b.WriteUint64(0xa)
	fmt.Println(and.Pin("y")) // 0b1000

*/
package evsim
