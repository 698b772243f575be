package tracker

import (
	"github.com/swdee/go-poseaction/geometry"
)

// History is a bounded ring buffer of the most recent movement points for a
// single joint
type History struct {
	// buf holds the points, oldest at index head
	buf []geometry.MovementPoint
	// head is the index of the oldest point
	head int
	// size is the number of points held
	size int
}

// NewHistory returns a history holding at most capacity points.  Capacity
// must be at least 1
func NewHistory(capacity int) *History {

	if capacity < 1 {
		capacity = 1
	}

	return &History{
		buf: make([]geometry.MovementPoint, capacity),
	}
}

// Push appends a point.  When the history already holds more than
// capacity-1 points it is first trimmed to the capacity-1 most recent, so
// after the push it never exceeds capacity
func (h *History) Push(p geometry.MovementPoint) {

	keep := len(h.buf) - 1

	for h.size > keep {
		h.DropOldest()
	}

	h.buf[(h.head+h.size)%len(h.buf)] = p
	h.size++
}

// DropOldest removes the single oldest point, it does nothing on an empty
// history
func (h *History) DropOldest() {

	if h.size == 0 {
		return
	}

	h.buf[h.head] = geometry.MovementPoint{}
	h.head = (h.head + 1) % len(h.buf)
	h.size--
}

// Len returns the number of points held
func (h *History) Len() int {
	return h.size
}

// Cap returns the maximum number of points held
func (h *History) Cap() int {
	return len(h.buf)
}

// Points returns a copy of the held points ordered oldest first
func (h *History) Points() []geometry.MovementPoint {

	out := make([]geometry.MovementPoint, h.size)

	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}

	return out
}

// Reset clears all points
func (h *History) Reset() {
	for i := range h.buf {
		h.buf[i] = geometry.MovementPoint{}
	}
	h.head = 0
	h.size = 0
}
