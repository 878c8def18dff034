package templog

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the pause between two polling rounds.
const DefaultInterval = 5 * time.Second

// InfraredSensor returns the object temperature seen by an infrared head.
type InfraredSensor interface {
	ReadTemperature(ctx context.Context) (float64, error)
}

// Thermocouple returns the temperature of one datalogger channel.
type Thermocouple interface {
	ReadChannel(ctx context.Context, tcType ThermocoupleType, channel int) (float64, error)
}

// Publisher receives every sample once it has been written to disk.
type Publisher interface {
	Publish(s Sample) error
}

// Channel binds a datalogger input to the thermocouple wired into it.
type Channel struct {
	Number int
	Type   ThermocoupleType
}

var (
	DefaultRadiatorChannel = Channel{Number: 1, Type: TypeK}
	DefaultAirChannel      = Channel{Number: 2, Type: TypeT}
)

// Poller reads the instruments in a fixed order, one round per interval,
// and appends every round to a session.
type Poller struct {
	tc       Thermocouple
	ir       InfraredSensor
	session  *Session
	cal      Linear
	radiator Channel
	air      Channel
	interval time.Duration
	max      int
	now      func() time.Time

	metrics    *Metrics
	publishers []Publisher
}

type Option func(*Poller)

func WithCalibration(cal Linear) Option {
	return func(p *Poller) { p.cal = cal }
}

func WithChannels(radiator, air Channel) Option {
	return func(p *Poller) {
		p.radiator = radiator
		p.air = air
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaxSamples stops Run after n rounds. Zero means no limit.
func WithMaxSamples(n int) Option {
	return func(p *Poller) { p.max = n }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

func WithPublisher(pub Publisher) Option {
	return func(p *Poller) { p.publishers = append(p.publishers, pub) }
}

func NewPoller(tc Thermocouple, ir InfraredSensor, session *Session, opts ...Option) *Poller {
	p := &Poller{
		tc:       tc,
		ir:       ir,
		session:  session,
		cal:      DefaultCalibration,
		radiator: DefaultRadiatorChannel,
		air:      DefaultAirChannel,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled or the sample limit is reached, and
// returns nil in both cases. A failed read stops the loop and is returned.
func (p *Poller) Run(ctx context.Context) error {
	log.Infof("Logging sensor data every %s...", p.interval)
	for n := 0; p.max == 0 || n < p.max; n++ {
		if n > 0 && !p.wait(ctx) {
			return nil
		}
		if _, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

func (p *Poller) wait(ctx context.Context) bool {
	t := time.NewTimer(p.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Poll runs a single round: radiator, infrared, air, then correction.
func (p *Poller) Poll(ctx context.Context) (Sample, error) {
	radiator, err := p.read(SourceRadiator, func() (float64, error) {
		return p.tc.ReadChannel(ctx, p.radiator.Type, p.radiator.Number)
	})
	if err != nil {
		return Sample{}, err
	}
	infrared, err := p.read(SourceInfrared, func() (float64, error) {
		return p.ir.ReadTemperature(ctx)
	})
	if err != nil {
		return Sample{}, err
	}
	air, err := p.read(SourceAir, func() (float64, error) {
		return p.tc.ReadChannel(ctx, p.air.Type, p.air.Number)
	})
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Radiator:   radiator,
		Infrared:   infrared,
		Air:        air,
		Correction: p.cal.Apply(infrared),
		Time:       p.now(),
	}
	if err := p.session.Append(sample); err != nil {
		return Sample{}, err
	}
	p.metrics.ObserveSample(sample)
	log.Infof("Logged: %v, %v, %v, %s", sample.Radiator, sample.Infrared, sample.Air, sample.Time.Format(TimeLayout))

	for _, pub := range p.publishers {
		if err := pub.Publish(sample); err != nil {
			log.WithError(err).Warn("failed to publish sample")
		}
	}
	return sample, nil
}

func (p *Poller) read(src Source, fn func() (float64, error)) (float64, error) {
	start := time.Now()
	v, err := fn()
	p.metrics.ObserveRead(src, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return v, nil
}
