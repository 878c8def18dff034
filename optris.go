package templog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// CmdReadTemperature asks the Optris head for the current object
	// temperature.
	CmdReadTemperature byte = 0x01

	DefaultOptrisBaud     = 9600
	DefaultOptrisTimeout  = time.Second
	DefaultOptrisAttempts = 10

	maxResponseLen = 10
	frameLen       = 2
	rawOffset      = 1000
	rawScale       = 10.0
)

// Port is the part of a serial line the infrared reader needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// PortOpener opens a serial line at the given baud rate.
type PortOpener func(name string, baud int) (Port, error)

// OpenSerial opens an OS serial port, 8N1.
func OpenSerial(name string, baud int) (Port, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OptrisConfig selects the serial line of an Optris infrared sensor.
type OptrisConfig struct {
	Port        string
	Baud        int
	Timeout     time.Duration
	MaxAttempts int
}

func (c OptrisConfig) withDefaults() OptrisConfig {
	if c.Baud <= 0 {
		c.Baud = DefaultOptrisBaud
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultOptrisTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultOptrisAttempts
	}
	return c
}

// Optris reads an Optris infrared sensor. The port is opened and closed on
// every read so the line can be shared with other tools between samples.
type Optris struct {
	cfg  OptrisConfig
	open PortOpener
}

// NewOptris returns a reader for cfg. A nil opener uses OpenSerial.
func NewOptris(cfg OptrisConfig, open PortOpener) *Optris {
	if open == nil {
		open = OpenSerial
	}
	return &Optris{cfg: cfg.withDefaults(), open: open}
}

// ReadTemperature sends a read command and decodes the reply. Empty replies
// are retried up to MaxAttempts times before ErrNoResponse is returned.
func (o *Optris) ReadTemperature(ctx context.Context) (temp float64, err error) {
	port, err := o.open(o.cfg.Port, o.cfg.Baud)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", o.cfg.Port, err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", o.cfg.Port, cerr)
		}
	}()

	if err := port.SetReadTimeout(o.cfg.Timeout); err != nil {
		return 0, fmt.Errorf("failed to set read timeout on %s: %w", o.cfg.Port, err)
	}

	cmd := Command(CmdReadTemperature)
	buf := make([]byte, maxResponseLen)
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := port.Write(cmd); err != nil {
			return 0, fmt.Errorf("failed to write command to %s: %w", o.cfg.Port, err)
		}
		n, err := readFrame(port, buf)
		if err != nil {
			return 0, fmt.Errorf("failed to read from %s: %w", o.cfg.Port, err)
		}
		if n == 0 {
			log.Debugf("empty response from %s (attempt %d/%d)", o.cfg.Port, attempt, o.cfg.MaxAttempts)
			continue
		}
		return DecodeTemperature(buf[:n])
	}
	return 0, fmt.Errorf("%w on %s after %d attempts", ErrNoResponse, o.cfg.Port, o.cfg.MaxAttempts)
}

// readFrame reads until a full temperature frame arrived, the buffer is full
// or the line times out. A read returning nothing means the timeout expired.
func readFrame(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if m == 0 || n >= frameLen {
			return n, nil
		}
	}
	return n, nil
}

// DecodeTemperature converts a raw Optris reply into degrees Celsius. The
// first two bytes carry a big-endian value R with T = (R - 1000) / 10.
func DecodeTemperature(resp []byte) (float64, error) {
	if len(resp) < frameLen {
		return 0, fmt.Errorf("%w: got %d bytes", ErrShortResponse, len(resp))
	}
	raw := binary.BigEndian.Uint16(resp[:frameLen])
	return (float64(raw) - rawOffset) / rawScale, nil
}
