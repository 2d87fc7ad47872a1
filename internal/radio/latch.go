package radio

import "sync/atomic"

// RXFrame holds a frame received by the transceiver.
type RXFrame struct {
	Modem Modem
	Data  []byte
}

// Latch hands received frames from the transceiver to the processing loop.
// It holds at most one frame; frames arriving while it is full or disabled
// are dropped, the same way the receive interrupt is ignored while a frame
// is being processed.
type Latch struct {
	enabled atomic.Bool
	dropped atomic.Uint64
	frames  chan RXFrame
}

// NewLatch returns an enabled Latch.
func NewLatch() *Latch {
	l := Latch{
		frames: make(chan RXFrame, 1),
	}
	l.enabled.Store(true)
	return &l
}

// Notify offers a frame without blocking. It returns false when the frame
// was dropped.
func (l *Latch) Notify(f RXFrame) bool {
	if !l.enabled.Load() {
		l.dropped.Add(1)
		return false
	}

	select {
	case l.frames <- f:
		return true
	default:
		l.dropped.Add(1)
		return false
	}
}

// Frames returns the channel of latched frames.
func (l *Latch) Frames() <-chan RXFrame {
	return l.frames
}

// Disable stops accepting frames and discards a pending one.
func (l *Latch) Disable() {
	l.enabled.Store(false)
	select {
	case <-l.frames:
		l.dropped.Add(1)
	default:
	}
}

// Enable accepts frames again.
func (l *Latch) Enable() {
	l.enabled.Store(true)
}

// Enabled returns true when frames are accepted.
func (l *Latch) Enabled() bool {
	return l.enabled.Load()
}

// Dropped returns the number of dropped frames.
func (l *Latch) Dropped() uint64 {
	return l.dropped.Load()
}
