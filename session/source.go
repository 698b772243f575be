package session

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrClosed is returned by a FrameSource once it has no more frames
var ErrClosed = errors.New("frame source closed")

// FrameSource supplies camera frames to the session, Next blocks until a
// frame is available
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// Mailbox is a FrameSource holding only the most recent frame.  A frame put
// before the previous one was taken replaces it, so a slow consumer always
// processes the newest frame and never builds a backlog
type Mailbox struct {
	mu     sync.Mutex
	frame  image.Image
	closed bool
	// dropped counts frames replaced before being taken
	dropped int64
	// ready signals a frame or close is pending
	ready chan struct{}
}

// NewMailbox returns an empty frame mailbox
func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
	}
}

// Put delivers a frame, replacing any frame not yet taken.  Frames put
// after Close are discarded
func (m *Mailbox) Put(img image.Image) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return
	}

	if m.frame != nil {
		m.dropped++
	}

	m.frame = img
	m.mu.Unlock()

	m.signal()
}

// Next returns the newest frame, waiting for one if needed.  After Close any
// pending frame is still returned before ErrClosed
func (m *Mailbox) Next(ctx context.Context) (image.Image, error) {

	for {
		m.mu.Lock()

		if m.frame != nil {
			img := m.frame
			m.frame = nil
			m.mu.Unlock()
			return img, nil
		}

		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}

		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.ready:
		}
	}
}

// Close stops the mailbox accepting frames
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.signal()
}

// Dropped returns the number of frames replaced before being processed
func (m *Mailbox) Dropped() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// signal wakes a waiting Next without blocking
func (m *Mailbox) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
		// already signalled
	}
}
