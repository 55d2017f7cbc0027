// Package metrics records and displays per-episode training statistics.
package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/ppg"
)

var header = []string{"episode", "steps", "mean_reward", "mean_step_seconds", "total_seconds", "outcome"}

// CSV appends one row per episode to <dir>/<run>.csv. The file is never
// truncated, so successive runs with the same name extend one record.
type CSV struct {
	Path string
}

func NewCSV(dir, run string) *CSV {
	return &CSV{Path: filepath.Join(dir, run+".csv")}
}

func (c *CSV) Record(s ppg.EpisodeStats) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	err = w.Write([]string{
		strconv.Itoa(s.Episode),
		strconv.Itoa(s.Steps),
		strconv.FormatFloat(s.MeanReward, 'f', 4, 64),
		strconv.FormatFloat(s.MeanStepSeconds, 'f', 4, 64),
		strconv.FormatFloat(s.TotalSeconds, 'f', 3, 64),
		string(s.Outcome),
	})
	if err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadRecord parses a record written by CSV.
func ReadRecord(path string) ([]ppg.EpisodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseRecord(f)
}

func parseRecord(r io.Reader) ([]ppg.EpisodeStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []ppg.EpisodeStats
	for i, row := range rows {
		if row[0] == header[0] {
			continue
		}
		s, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseRow(row []string) (ppg.EpisodeStats, error) {
	var s ppg.EpisodeStats
	var err error
	if s.Episode, err = strconv.Atoi(row[0]); err != nil {
		return s, err
	}
	if s.Steps, err = strconv.Atoi(row[1]); err != nil {
		return s, err
	}
	floatsAt := []*float64{&s.MeanReward, &s.MeanStepSeconds, &s.TotalSeconds}
	for i, dst := range floatsAt {
		if *dst, err = strconv.ParseFloat(row[2+i], 64); err != nil {
			return s, err
		}
	}
	s.Outcome = ppg.Outcome(row[5])
	return s, nil
}
