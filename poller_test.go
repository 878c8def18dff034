package templog

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

type fakeThermocouple struct {
	rec    *recorder
	values map[int]float64
	err    error
}

func (f *fakeThermocouple) ReadChannel(_ context.Context, tcType ThermocoupleType, channel int) (float64, error) {
	f.rec.add("tc" + tcType.String())
	if f.err != nil {
		return 0, f.err
	}
	return f.values[channel], nil
}

type fakeInfrared struct {
	rec   *recorder
	value float64
	err   error
}

func (f *fakeInfrared) ReadTemperature(context.Context) (float64, error) {
	f.rec.add("ir")
	return f.value, f.err
}

type fakePublisher struct {
	samples []Sample
	err     error
}

func (f *fakePublisher) Publish(s Sample) error {
	f.samples = append(f.samples, s)
	return f.err
}

func newTestPoller(t *testing.T, opts ...Option) (*Poller, *Session, *recorder) {
	t.Helper()
	session, err := NewSession(t.TempDir(), "poller")
	require.Nil(t, err)
	t.Cleanup(func() { session.Close() })

	rec := &recorder{}
	tc := &fakeThermocouple{rec: rec, values: map[int]float64{1: 60.5, 2: 21.25}}
	ir := &fakeInfrared{rec: rec, value: 50}
	clock := func() time.Time { return time.Date(2025, 1, 2, 13, 45, 0, 0, time.Local) }

	opts = append([]Option{WithClock(clock), WithInterval(time.Millisecond)}, opts...)
	return NewPoller(tc, ir, session, opts...), session, rec
}

func TestPollerPoll(t *testing.T) {
	require := require.New(t)

	p, session, rec := newTestPoller(t)
	sample, err := p.Poll(context.Background())
	require.Nil(err)

	require.Equal([]string{"tcK", "ir", "tcT"}, rec.get())
	require.Equal(60.5, sample.Radiator)
	require.Equal(50.0, sample.Infrared)
	require.Equal(21.25, sample.Air)
	require.InDelta(DefaultCalibration.Apply(50), sample.Correction, 1e-12)
	require.Equal("13:45:00", sample.Time.Format(TimeLayout))
	require.Equal(1, session.Series().Len())
}

func TestPollerRunWritesRows(t *testing.T) {
	require := require.New(t)

	const n = 4
	p, session, rec := newTestPoller(t, WithMaxSamples(n))
	require.Nil(p.Run(context.Background()))

	data, err := os.ReadFile(session.CSVPath())
	require.Nil(err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(lines, n+1)
	require.Equal("Radiator,OptrisIrS,Air Temp,Time,Correction", lines[0])

	series := session.Series()
	require.Len(series.Times, n)
	require.Len(series.Radiator, n)
	require.Len(series.Infrared, n)
	require.Len(series.Air, n)
	require.Len(series.Correction, n)
	require.Len(rec.get(), 3*n)
}

func TestPollerCustomChannelsAndCalibration(t *testing.T) {
	require := require.New(t)

	p, _, rec := newTestPoller(t,
		WithChannels(Channel{Number: 2, Type: TypeJ}, Channel{Number: 1, Type: TypeE}),
		WithCalibration(Linear{A: 2, B: 1}),
	)
	sample, err := p.Poll(context.Background())
	require.Nil(err)
	require.Equal([]string{"tcJ", "ir", "tcE"}, rec.get())
	require.Equal(21.25, sample.Radiator)
	require.Equal(60.5, sample.Air)
	require.Equal(101.0, sample.Correction)
}

func TestPollerStopsOnReadError(t *testing.T) {
	require := require.New(t)

	session, err := NewSession(t.TempDir(), "failing")
	require.Nil(err)
	defer session.Close()

	rec := &recorder{}
	boom := errors.New("device unplugged")
	p := NewPoller(
		&fakeThermocouple{rec: rec, values: map[int]float64{}},
		&fakeInfrared{rec: rec, err: boom},
		session,
		WithInterval(time.Millisecond),
	)

	err = p.Run(context.Background())
	require.ErrorIs(err, boom)
	require.Contains(err.Error(), "infrared")
	require.Equal([]string{"tcK", "ir"}, rec.get())
	require.Equal(0, session.Series().Len())
	require.Len(readCSV(t, session.CSVPath()), 1)
}

func TestPollerStopsOnCancel(t *testing.T) {
	require := require.New(t)

	p, session, _ := newTestPoller(t, WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(func() bool {
		data, err := os.ReadFile(session.CSVPath())
		return err == nil && strings.Count(string(data), "\n") == 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Nil(err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	require.Equal(1, session.Series().Len())
}

func TestPollerCancelledDuringRead(t *testing.T) {
	require := require.New(t)

	session, err := NewSession(t.TempDir(), "interrupted")
	require.Nil(err)
	defer session.Close()

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPoller(
		&fakeThermocouple{rec: rec, err: context.Canceled},
		&fakeInfrared{rec: rec},
		session,
	)
	require.Nil(p.Run(ctx))
}

func TestPollerPublishes(t *testing.T) {
	require := require.New(t)

	failing := &fakePublisher{err: errors.New("broker down")}
	ok := &fakePublisher{}
	p, _, _ := newTestPoller(t, WithPublisher(failing), WithPublisher(ok), WithMaxSamples(2))

	require.Nil(p.Run(context.Background()))
	require.Len(failing.samples, 2)
	require.Len(ok.samples, 2)
	require.Equal(60.5, ok.samples[1].Radiator)
}

func TestPollerMetrics(t *testing.T) {
	require := require.New(t)

	m := NewMetrics()
	p, _, _ := newTestPoller(t, WithMetrics(m), WithMaxSamples(3))
	require.Nil(p.Run(context.Background()))

	require.Equal(3.0, testutil.ToFloat64(m.samples))
	require.Equal(60.5, testutil.ToFloat64(m.temperature.WithLabelValues("radiator")))
	require.Equal(50.0, testutil.ToFloat64(m.temperature.WithLabelValues("infrared")))
	require.Equal(21.25, testutil.ToFloat64(m.temperature.WithLabelValues("air")))
	require.Equal(0.0, testutil.ToFloat64(m.readErrors.WithLabelValues("infrared")))
	require.Equal(3, testutil.CollectAndCount(m.readDuration))
}

func TestPollerCancelledReadNotCountedAsError(t *testing.T) {
	require := require.New(t)

	m := NewMetrics()
	session, err := NewSession(t.TempDir(), "cancelled")
	require.Nil(err)
	defer session.Close()

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPoller(
		&fakeThermocouple{rec: rec, err: context.Canceled},
		&fakeInfrared{rec: rec},
		session,
		WithMetrics(m),
	)
	require.Nil(p.Run(ctx))
	require.Equal(0.0, testutil.ToFloat64(m.readErrors.WithLabelValues("radiator")))
}
