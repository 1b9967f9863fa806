// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import "github.com/ManuGH/playout/internal/device"

// frameQueue is a fixed-capacity FIFO ring. It is not safe for concurrent
// use; the session mutex guards it.
type frameQueue struct {
	buf       []device.Frame
	head      int
	n         int
	highWater int
}

func newFrameQueue(capacity int) *frameQueue {
	return &frameQueue{buf: make([]device.Frame, capacity)}
}

func (q *frameQueue) Len() int { return q.n }
func (q *frameQueue) Cap() int { return len(q.buf) }

func (q *frameQueue) full() bool { return q.n == len(q.buf) }

func (q *frameQueue) push(f device.Frame) bool {
	if q.full() {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = f
	q.n++
	q.mark()
	return true
}

// pushFront puts f back at the head, ahead of every queued frame.
func (q *frameQueue) pushFront(f device.Frame) bool {
	if q.full() {
		return false
	}
	q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
	q.buf[q.head] = f
	q.n++
	q.mark()
	return true
}

func (q *frameQueue) pop() (device.Frame, bool) {
	if q.n == 0 {
		return device.Frame{}, false
	}
	f := q.buf[q.head]
	q.buf[q.head] = device.Frame{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return f, true
}

// clear drops every queued frame and returns how many were dropped.
func (q *frameQueue) clear() int {
	dropped := q.n
	for i := range q.buf {
		q.buf[i] = device.Frame{}
	}
	q.head, q.n = 0, 0
	return dropped
}

func (q *frameQueue) mark() {
	if q.n > q.highWater {
		q.highWater = q.n
	}
}
