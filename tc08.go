package templog

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ThermocoupleType is the single letter designator the datalogger uses to
// pick a voltage to temperature curve.
type ThermocoupleType byte

const (
	TypeB        ThermocoupleType = 'B'
	TypeE        ThermocoupleType = 'E'
	TypeJ        ThermocoupleType = 'J'
	TypeK        ThermocoupleType = 'K'
	TypeN        ThermocoupleType = 'N'
	TypeR        ThermocoupleType = 'R'
	TypeS        ThermocoupleType = 'S'
	TypeT        ThermocoupleType = 'T'
	TypeX        ThermocoupleType = 'X' // raw millivolts
	TypeDisabled ThermocoupleType = ' '
)

// Valid reports whether t can be used to take a reading.
func (t ThermocoupleType) Valid() bool {
	switch t {
	case TypeB, TypeE, TypeJ, TypeK, TypeN, TypeR, TypeS, TypeT, TypeX:
		return true
	}
	return false
}

func (t ThermocoupleType) String() string {
	if t == TypeDisabled {
		return "disabled"
	}
	return string(rune(t))
}

// ParseThermocoupleType accepts a single letter, case insensitive.
func ParseThermocoupleType(s string) (ThermocoupleType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid thermocouple type %q", s)
	}
	t := ThermocoupleType(s[0])
	if !t.Valid() {
		return 0, fmt.Errorf("invalid thermocouple type %q", s)
	}
	return t, nil
}

// Mains selects the rejection filter matching the local grid frequency.
type Mains int16

const (
	Mains50Hz Mains = 0
	Mains60Hz Mains = 1
)

// Units selects the unit of converted readings.
type Units int16

const (
	UnitsCelsius    Units = 0
	UnitsFahrenheit Units = 1
	UnitsKelvin     Units = 2
	UnitsRankine    Units = 3
)

const (
	// Slots returned by a single reading: the cold junction followed by
	// eight thermocouple inputs.
	Slots      = 9
	MinChannel = 1
	MaxChannel = 8
)

// SDK is the subset of the USB TC-08 driver used to take single readings.
// Implementations return *SDKError for driver failures.
type SDK interface {
	OpenUnit() (int16, error)
	SetMains(handle int16, mains Mains) error
	SetChannel(handle int16, channel int, tcType ThermocoupleType) error
	MinimumIntervalMS(handle int16) (int32, error)
	GetSingle(handle int16, units Units) ([Slots]float32, uint16, error)
	CloseUnit(handle int16) error
}

// TC08 takes readings from a Pico TC-08 datalogger. Each reading runs a full
// open, configure, read, close cycle on the unit.
type TC08 struct {
	sdk   SDK
	mains Mains
}

// NewTC08 returns a reader using sdk with 50 Hz mains rejection.
func NewTC08(sdk SDK) *TC08 {
	return &TC08{sdk: sdk, mains: Mains50Hz}
}

// SetMains changes the rejection filter used for later readings.
func (t *TC08) SetMains(m Mains) {
	t.mains = m
}

// ReadChannel returns the temperature in Celsius measured on channel with a
// thermocouple of type tcType.
func (t *TC08) ReadChannel(ctx context.Context, tcType ThermocoupleType, channel int) (temp float64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if channel < MinChannel || channel > MaxChannel {
		return 0, fmt.Errorf("channel %d out of range %d-%d", channel, MinChannel, MaxChannel)
	}
	if !tcType.Valid() {
		return 0, fmt.Errorf("invalid thermocouple type %q", byte(tcType))
	}

	handle, err := t.sdk.OpenUnit()
	if err != nil {
		return 0, fmt.Errorf("failed to open TC-08: %w", err)
	}
	if handle == 0 {
		return 0, ErrNoDevice
	}
	defer func() {
		if cerr := t.sdk.CloseUnit(handle); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close TC-08: %w", cerr)
		}
	}()

	if err := t.sdk.SetMains(handle, t.mains); err != nil {
		return 0, fmt.Errorf("failed to set mains rejection: %w", err)
	}
	if err := t.sdk.SetChannel(handle, channel, tcType); err != nil {
		return 0, fmt.Errorf("failed to set up channel %d: %w", channel, err)
	}
	interval, err := t.sdk.MinimumIntervalMS(handle)
	if err != nil {
		return 0, fmt.Errorf("failed to get minimum interval: %w", err)
	}
	log.Debugf("TC-08 handle %d minimum sampling interval %d ms", handle, interval)

	temps, overflow, err := t.sdk.GetSingle(handle, UnitsCelsius)
	if err != nil {
		return 0, fmt.Errorf("failed to read channel %d: %w", channel, err)
	}
	log.Debugf("TC-08 cold junction %.2f, channel %d %.2f", temps[0], channel, temps[channel])
	if overflow&(1<<uint(channel)) != 0 {
		return 0, fmt.Errorf("%w on channel %d", ErrOverflow, channel)
	}
	return float64(temps[channel]), nil
}
