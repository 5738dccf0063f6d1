package app

import (
	"context"
	"sync"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/broadcast"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
)

// --- Mock implementations ---

type mockDisplay struct {
	mu            sync.Mutex
	frame         domain.Frame
	rotation      int
	rotationCalls int
	frameReads    int
	frameErr      error
	setFrameErr   error
	rotationErr   error
	scrollFn      func(ctx context.Context, text string, speed time.Duration, color domain.Pixel) error
}

func (m *mockDisplay) SetFrame(_ context.Context, frame domain.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setFrameErr != nil {
		return m.setFrameErr
	}
	m.frame = frame
	return nil
}

func (m *mockDisplay) Frame(_ context.Context) (domain.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameReads++
	if m.frameErr != nil {
		return domain.Frame{}, m.frameErr
	}
	return m.frame, nil
}

func (m *mockDisplay) SetRotation(_ context.Context, degrees int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotationCalls++
	if m.rotationErr != nil {
		return m.rotationErr
	}
	m.rotation = degrees
	return nil
}

func (m *mockDisplay) ScrollText(ctx context.Context, text string, speed time.Duration, color domain.Pixel) error {
	if m.scrollFn != nil {
		return m.scrollFn(ctx, text, speed, color)
	}
	return nil
}

func (m *mockDisplay) setFrameErrLocked(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameErr = err
}

func (m *mockDisplay) current() domain.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

type recordingAnnouncer struct {
	mu       sync.Mutex
	messages []broadcast.Message
}

func (r *recordingAnnouncer) Announce(msg broadcast.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingAnnouncer) take() []broadcast.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

func (r *recordingAnnouncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
