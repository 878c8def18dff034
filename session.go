package templog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CSVHeader names the columns of every data row, correction included.
var CSVHeader = []string{"Radiator", "OptrisIrS", "Air Temp", "Time", "Correction"}

// Session is one experiment: a CSV file on disk mirrored by an in-memory
// series used for the final plot.
type Session struct {
	ID   string
	Name string
	Dir  string

	f      *os.File
	w      *csv.Writer
	series Series
}

// ExperimentName normalizes a user supplied experiment name into a file
// name stem. Surrounding blanks are dropped and spaces become underscores.
func ExperimentName(raw string) (string, error) {
	name := strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")
	if name == "" {
		return "", errors.New("experiment name cannot be empty")
	}
	if strings.ContainsAny(name, `/\<>:"|?*`) {
		return "", fmt.Errorf("experiment name contains invalid characters: %s", name)
	}
	return name, nil
}

// PromptExperimentName asks for an experiment name on w and reads one line
// from r.
func PromptExperimentName(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter the experiment name: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read experiment name: %w", err)
	}
	return ExperimentName(line)
}

// NewSession creates <dir>/<name>.csv, truncating any previous file, and
// writes the header row.
func NewSession(dir, name string) (*Session, error) {
	name, err := ExperimentName(name)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:   uuid.New().String(),
		Name: name,
		Dir:  dir,
	}
	f, err := os.Create(s.CSVPath())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.CSVPath(), err)
	}
	s.f = f
	s.w = csv.NewWriter(f)
	if err := s.writeRecord(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	log.WithField("session", s.ID).Infof("CSV file '%s' created", s.CSVPath())
	return s, nil
}

func (s *Session) CSVPath() string {
	return filepath.Join(s.Dir, s.Name+".csv")
}

func (s *Session) PlotPath() string {
	return filepath.Join(s.Dir, s.Name+".png")
}

func (s *Session) writeRecord(record []string) error {
	if err := s.w.Write(record); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.CSVPath(), err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.CSVPath(), err)
	}
	return nil
}

// Append writes sample as a CSV row and adds it to the series. Rows are
// flushed immediately so a crash loses at most the sample in flight.
func (s *Session) Append(sample Sample) error {
	if err := s.writeRecord(sample.Record()); err != nil {
		return err
	}
	s.series.Append(sample)
	return nil
}

// Series returns the samples appended so far.
func (s *Session) Series() Series {
	return s.series
}

// SavePlot renders the series to <dir>/<name>.png and returns the path.
func (s *Session) SavePlot() (string, error) {
	path := s.PlotPath()
	if err := RenderPlot(path, s.series); err != nil {
		return "", err
	}
	return path, nil
}

// Close flushes and closes the CSV file.
func (s *Session) Close() error {
	if s.f == nil {
		return nil
	}
	s.w.Flush()
	werr := s.w.Error()
	cerr := s.f.Close()
	s.f = nil
	return errors.Join(werr, cerr)
}
