package templog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.Nil(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.Nil(t, err)
	return records
}

func TestExperimentName(t *testing.T) {
	require := require.New(t)

	name, err := ExperimentName("  radiator run 3 \n")
	require.Nil(err)
	require.Equal("radiator_run_3", name)

	_, err = ExperimentName("   ")
	require.Error(err)
	_, err = ExperimentName("../escape")
	require.Error(err)
}

func TestPromptExperimentName(t *testing.T) {
	require := require.New(t)

	var out strings.Builder
	name, err := PromptExperimentName(strings.NewReader("cold start\nignored\n"), &out)
	require.Nil(err)
	require.Equal("cold_start", name)
	require.Equal("Enter the experiment name: ", out.String())

	name, err = PromptExperimentName(strings.NewReader("no newline"), &out)
	require.Nil(err)
	require.Equal("no_newline", name)

	_, err = PromptExperimentName(strings.NewReader(""), &out)
	require.Error(err)
}

func TestNewSession(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	s, err := NewSession(dir, "bench test")
	require.Nil(err)
	defer s.Close()

	require.Equal("bench_test", s.Name)
	require.Equal(filepath.Join(dir, "bench_test.csv"), s.CSVPath())
	require.Equal(filepath.Join(dir, "bench_test.png"), s.PlotPath())
	_, err = uuid.Parse(s.ID)
	require.Nil(err)

	require.Equal([][]string{CSVHeader}, readCSV(t, s.CSVPath()))
	require.Equal(0, s.Series().Len())
}

func TestNewSessionTruncates(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "old.csv")
	require.Nil(os.WriteFile(path, []byte("stale,data\n1,2\n"), 0o644))

	s, err := NewSession(dir, "old")
	require.Nil(err)
	require.Nil(s.Close())
	require.Equal([][]string{CSVHeader}, readCSV(t, path))
}

func TestNewSessionMissingDir(t *testing.T) {
	_, err := NewSession(filepath.Join(t.TempDir(), "missing"), "run")
	require.Error(t, err)
}

func TestSessionAppend(t *testing.T) {
	require := require.New(t)

	s, err := NewSession(t.TempDir(), "append")
	require.Nil(err)

	at := time.Date(2025, 3, 14, 9, 5, 7, 0, time.Local)
	sample := Sample{Radiator: 55.25, Infrared: 50.1, Air: 22.75, Correction: 65.69, Time: at}
	require.Nil(s.Append(sample))
	require.Nil(s.Append(sample))

	// Rows are on disk before the session is closed.
	records := readCSV(t, s.CSVPath())
	require.Len(records, 3)
	require.Equal([]string{"Radiator", "OptrisIrS", "Air Temp", "Time", "Correction"}, records[0])
	require.Equal([]string{"55.25", "50.1", "22.75", "09:05:07", "65.69"}, records[1])
	for _, r := range records {
		require.Len(r, len(CSVHeader))
	}

	series := s.Series()
	require.Equal(2, series.Len())
	require.Equal([]float64{55.25, 55.25}, series.Radiator)
	require.Equal([]float64{50.1, 50.1}, series.Infrared)
	require.Equal([]float64{22.75, 22.75}, series.Air)
	require.Equal([]float64{65.69, 65.69}, series.Correction)

	require.Nil(s.Close())
	require.Nil(s.Close())
}
