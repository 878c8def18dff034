package templog

import (
	"strconv"
	"time"
)

// TimeLayout renders sample timestamps as wall clock HH:MM:SS.
const TimeLayout = "15:04:05"

// Source identifies where a value in a sample came from.
type Source string

const (
	SourceRadiator   Source = "radiator"
	SourceInfrared   Source = "infrared"
	SourceAir        Source = "air"
	SourceCorrection Source = "correction"
)

// Sample is the outcome of one polling round.
type Sample struct {
	Radiator   float64
	Infrared   float64
	Air        float64
	Correction float64
	Time       time.Time
}

// Reading is a single value of a sample tagged with its source.
type Reading struct {
	Source Source
	Value  float64
	Time   time.Time
}

// Readings splits s into one reading per source, correction last.
func (s Sample) Readings() []Reading {
	return []Reading{
		{Source: SourceRadiator, Value: s.Radiator, Time: s.Time},
		{Source: SourceInfrared, Value: s.Infrared, Time: s.Time},
		{Source: SourceAir, Value: s.Air, Time: s.Time},
		{Source: SourceCorrection, Value: s.Correction, Time: s.Time},
	}
}

// Record returns the CSV row for s: radiator, infrared, air, time, correction.
func (s Sample) Record() []string {
	return []string{
		formatFloat(s.Radiator),
		formatFloat(s.Infrared),
		formatFloat(s.Air),
		s.Time.Format(TimeLayout),
		formatFloat(s.Correction),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Series holds the samples of a session column by column for plotting.
type Series struct {
	Times      []time.Time
	Radiator   []float64
	Infrared   []float64
	Air        []float64
	Correction []float64
}

// Append adds s to every column.
func (s *Series) Append(sample Sample) {
	s.Times = append(s.Times, sample.Time)
	s.Radiator = append(s.Radiator, sample.Radiator)
	s.Infrared = append(s.Infrared, sample.Infrared)
	s.Air = append(s.Air, sample.Air)
	s.Correction = append(s.Correction, sample.Correction)
}

func (s Series) Len() int {
	return len(s.Times)
}
