package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	templog "github.com/ivancg269/go-templog"
)

// Config holds the validated command line of templog.
type Config struct {
	Name        string
	Dir         string
	Optris      templog.OptrisConfig
	Radiator    templog.Channel
	Air         templog.Channel
	Mains       templog.Mains
	Interval    time.Duration
	Calibration templog.Linear
	MQTTBroker  string
	MQTTTopic   string
	MetricsAddr string
	List        bool
	Debug       bool
}

// ParseConfig parses args (without the program name) into a Config.
func ParseConfig(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("templog", flag.ContinueOnError)
	fs.SetOutput(output)

	cfg := &Config{}
	fs.StringVar(&cfg.Name, "name", "", "experiment name, prompted for when empty")
	fs.StringVar(&cfg.Dir, "dir", ".", "directory receiving the CSV and PNG files")
	fs.StringVar(&cfg.Optris.Port, "port", defaultPort, "serial port of the Optris sensor")
	fs.IntVar(&cfg.Optris.Baud, "baud", templog.DefaultOptrisBaud, "serial baud rate")
	fs.DurationVar(&cfg.Optris.Timeout, "timeout", templog.DefaultOptrisTimeout, "serial read timeout")
	fs.IntVar(&cfg.Optris.MaxAttempts, "retries", templog.DefaultOptrisAttempts, "attempts before an infrared read fails")
	fs.IntVar(&cfg.Radiator.Number, "radiator-channel", templog.DefaultRadiatorChannel.Number, "TC-08 channel of the radiator thermocouple")
	radiatorType := fs.String("radiator-type", templog.DefaultRadiatorChannel.Type.String(), "radiator thermocouple type")
	fs.IntVar(&cfg.Air.Number, "air-channel", templog.DefaultAirChannel.Number, "TC-08 channel of the air thermocouple")
	airType := fs.String("air-type", templog.DefaultAirChannel.Type.String(), "air thermocouple type")
	mains := fs.Int("mains", 50, "mains frequency to reject, 50 or 60 Hz")
	fs.DurationVar(&cfg.Interval, "interval", templog.DefaultInterval, "pause between samples")
	fs.Float64Var(&cfg.Calibration.A, "cal-a", templog.DefaultCalibration.A, "infrared correction slope")
	fs.Float64Var(&cfg.Calibration.B, "cal-b", templog.DefaultCalibration.B, "infrared correction intercept")
	fs.StringVar(&cfg.MQTTBroker, "mqtt-broker", "", "MQTT broker to publish samples to (e.g. tcp://localhost:1883)")
	fs.StringVar(&cfg.MQTTTopic, "mqtt-topic", "", "MQTT topic, defaults to templog/<name>")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "address serving Prometheus metrics (e.g. :9100)")
	fs.BoolVar(&cfg.List, "list", false, "list attached TC-08 units and exit")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	if cfg.Radiator.Type, err = templog.ParseThermocoupleType(*radiatorType); err != nil {
		return nil, err
	}
	if cfg.Air.Type, err = templog.ParseThermocoupleType(*airType); err != nil {
		return nil, err
	}
	switch *mains {
	case 50:
		cfg.Mains = templog.Mains50Hz
	case 60:
		cfg.Mains = templog.Mains60Hz
	default:
		return nil, fmt.Errorf("mains must be 50 or 60, got %d", *mains)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.List {
		return nil
	}
	if c.Optris.Port == "" {
		return errors.New("serial port cannot be empty")
	}
	if c.Optris.Baud <= 0 {
		return errors.New("baud rate must be greater than 0")
	}
	if c.Optris.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if c.Optris.MaxAttempts <= 0 {
		return errors.New("retries must be greater than 0")
	}
	for _, ch := range []templog.Channel{c.Radiator, c.Air} {
		if ch.Number < templog.MinChannel || ch.Number > templog.MaxChannel {
			return fmt.Errorf("channel %d out of range %d-%d", ch.Number, templog.MinChannel, templog.MaxChannel)
		}
	}
	if c.Radiator.Number == c.Air.Number {
		return errors.New("radiator and air thermocouples must use different channels")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.Name != "" {
		if _, err := templog.ExperimentName(c.Name); err != nil {
			return err
		}
	}
	return nil
}
