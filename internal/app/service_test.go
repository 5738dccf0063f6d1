package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/domain"
	"github.com/cleroux/pi-xmas-hat/internal/preset"
	"github.com/cleroux/pi-xmas-hat/internal/render"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc       *Service
	display   *mockDisplay
	coalescer *Coalescer
	announcer *recordingAnnouncer
	catalog   *preset.Catalog
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	catalog, err := preset.Default()
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	display := &mockDisplay{}
	ann := &recordingAnnouncer{}
	coalescer := NewCoalescer(display, ann, clock, time.Second, nil)

	return serviceFixture{
		svc:       NewService(display, catalog, coalescer, clock, 0, nil),
		display:   display,
		coalescer: coalescer,
		announcer: ann,
		catalog:   catalog,
	}
}

func TestService_ShowPreset(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ShowPreset(ctx, 0))

	p, err := f.catalog.Get(0)
	require.NoError(t, err)
	assert.Equal(t, p.Frame, f.display.current())
	assert.Equal(t, displayRotation, f.display.rotation)

	// The next tick broadcasts exactly what GET /image/0 would render.
	require.NoError(t, f.coalescer.Tick(ctx))
	msgs := f.announcer.take()
	require.Len(t, msgs, 1)

	want, err := f.svc.PresetSVG(0)
	require.NoError(t, err)
	assert.Equal(t, want, msgs[0].Data)
}

func TestService_ShowPreset_InvalidIDDoesNotMutate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for _, id := range []int{-1, 25, 1000} {
		err := f.svc.ShowPreset(ctx, id)
		require.ErrorIs(t, err, domain.ErrInvalidPreset, "id %d", id)
	}

	assert.Zero(t, f.display.rotationCalls)
	assert.Equal(t, domain.Frame{}, f.display.current())

	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Empty(t, f.announcer.take())
}

func TestService_ShowPreset_DisplayError(t *testing.T) {
	f := newServiceFixture(t)
	f.display.setFrameErr = errors.New("bus error")
	ctx := context.Background()

	err := f.svc.ShowPreset(ctx, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set frame")

	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Empty(t, f.announcer.take(), "failed draws are not announced")
}

func TestService_ShowMessage_FlagSetOnlyWhileScrolling(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var scrolled struct {
		text  string
		speed time.Duration
		color domain.Pixel
	}
	f.display.scrollFn = func(ctx context.Context, text string, speed time.Duration, color domain.Pixel) error {
		scrolled.text, scrolled.speed, scrolled.color = text, speed, color
		// A tick during the scroll sees the message flag.
		require.NoError(t, f.coalescer.Tick(ctx))
		require.NoError(t, f.coalescer.Tick(ctx))
		return nil
	}

	require.NoError(t, f.svc.ShowMessage(ctx, "Merry Xmas"))

	assert.Equal(t, "Merry Xmas ", scrolled.text)
	assert.Equal(t, DefaultScrollSpeed, scrolled.speed)
	assert.Equal(t, domain.Pixel{R: 200}, scrolled.color)
	assert.Equal(t, displayRotation, f.display.rotation)
	assert.Len(t, f.announcer.take(), 2)

	require.NoError(t, f.coalescer.Tick(ctx))
	msgs := f.announcer.take()
	require.Len(t, msgs, 1, "the settled frame is broadcast once")
	assert.Equal(t, render.SVG(f.display.current()), msgs[0].Data)

	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Empty(t, f.announcer.take(), "flag is cleared once the scroll returns")
}

func TestService_ShowMessage_OverlappingScrollsKeepFlag(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// Scrolls queue on one bus, as on the emulator.
	var bus sync.Mutex
	entered := make(chan string)
	release := map[string]chan struct{}{
		"first ":  make(chan struct{}),
		"second ": make(chan struct{}),
	}
	f.display.scrollFn = func(_ context.Context, text string, _ time.Duration, _ domain.Pixel) error {
		entered <- text
		bus.Lock()
		defer bus.Unlock()
		<-release[text]
		return nil
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- f.svc.ShowMessage(ctx, "first") }()
	require.Equal(t, "first ", <-entered)

	secondDone := make(chan error, 1)
	go func() { secondDone <- f.svc.ShowMessage(ctx, "second") }()
	require.Equal(t, "second ", <-entered)

	close(release["first "])
	require.NoError(t, <-firstDone)

	// The settled-frame update from the first message goes out once.
	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Len(t, f.announcer.take(), 2)

	// The second message is still scrolling: every tick broadcasts its frame.
	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Len(t, f.announcer.take(), 1)
	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Len(t, f.announcer.take(), 1)

	close(release["second "])
	require.NoError(t, <-secondDone)

	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Len(t, f.announcer.take(), 1)
	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Empty(t, f.announcer.take())
}

func TestService_ShowMessage_ScrollErrorClearsFlag(t *testing.T) {
	f := newServiceFixture(t)
	f.display.scrollFn = func(context.Context, string, time.Duration, domain.Pixel) error {
		return errors.New("display unplugged")
	}
	ctx := context.Background()

	err := f.svc.ShowMessage(ctx, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display unplugged")

	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Len(t, f.announcer.take(), 1, "only the settled frame, no message frames")
	require.NoError(t, f.coalescer.Tick(ctx))
	assert.Empty(t, f.announcer.take())
}

func TestService_ShowMessage_IgnoresCallerCancellation(t *testing.T) {
	f := newServiceFixture(t)
	f.display.scrollFn = func(ctx context.Context, _ string, _ time.Duration, _ domain.Pixel) error {
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.svc.ShowMessage(ctx, "still scrolling"))
}

func TestService_CurrentSVG(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ShowPreset(ctx, 2))

	svg, err := f.svc.CurrentSVG(ctx)
	require.NoError(t, err)

	p, err := f.catalog.Get(2)
	require.NoError(t, err)
	assert.Equal(t, render.SVG(p.Frame), svg)
}

func TestService_CurrentSVG_ConcurrentCallers(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ShowPreset(ctx, 1))
	want, err := f.svc.PresetSVG(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svg, err := f.svc.CurrentSVG(ctx)
			assert.NoError(t, err)
			assert.Equal(t, want, svg)
		}()
	}
	wg.Wait()
}

func TestService_CurrentSVG_ReadError(t *testing.T) {
	f := newServiceFixture(t)
	f.display.frameErr = errors.New("i2c timeout")

	_, err := f.svc.CurrentSVG(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read display")
}

func TestService_PresetSVG(t *testing.T) {
	f := newServiceFixture(t)

	svg, err := f.svc.PresetSVG(24)
	require.NoError(t, err)
	assert.Contains(t, svg, "<rect")

	_, err = f.svc.PresetSVG(25)
	require.ErrorIs(t, err, domain.ErrInvalidPreset)
}

func TestService_Metrics(t *testing.T) {
	f := newServiceFixture(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewDisplayMetrics(reg)
	f.svc.metrics = m
	ctx := context.Background()

	require.NoError(t, f.svc.ShowPreset(ctx, 0))
	require.NoError(t, f.svc.ShowMessage(ctx, "x"))
	f.display.setFrameErr = errors.New("bus error")
	require.Error(t, f.svc.ShowPreset(ctx, 0))

	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("image", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("image", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("message", "success")), 0)
}
