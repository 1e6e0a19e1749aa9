// Package ingest reads power profiles from external sources into a
// model.TimeSeries.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/batlife/core/model"
)

// ErrMissingColumn is returned when the header lacks Time or Power.
var ErrMissingColumn = errors.New("missing column")

// ReadCSV parses a profile with a "Time" column (minutes since the start of
// the year) and a "Power" column (watts). Header names are matched
// case-insensitively and other columns are ignored.
func ReadCSV(r io.Reader) (model.TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.TimeSeries{}, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return model.TimeSeries{}, err
	}
	timeCol, powerCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "time":
			timeCol = i
		case "power":
			powerCol = i
		}
	}
	if timeCol < 0 {
		return model.TimeSeries{}, fmt.Errorf("%w: Time", ErrMissingColumn)
	}
	if powerCol < 0 {
		return model.TimeSeries{}, fmt.Errorf("%w: Power", ErrMissingColumn)
	}

	var ts model.TimeSeries
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.TimeSeries{}, err
		}
		minute, err := parseMinute(rec[timeCol])
		if err != nil {
			return model.TimeSeries{}, fmt.Errorf("line %d: %w", line, err)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(rec[powerCol]), 64)
		if err != nil {
			return model.TimeSeries{}, fmt.Errorf("line %d: power: %w", line, err)
		}
		ts.Timestamps = append(ts.Timestamps, minute)
		ts.Powers = append(ts.Powers, p)
	}
	return ts, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (model.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TimeSeries{}, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// WriteCSV writes ts with the header expected by ReadCSV.
func WriteCSV(w io.Writer, ts model.TimeSeries) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time", "Power"}); err != nil {
		return err
	}
	for i := range ts.Powers {
		rec := []string{
			strconv.FormatInt(ts.Timestamps[i], 10),
			strconv.FormatFloat(ts.Powers[i], 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// parseMinute accepts integral values written either as integers or floats
// ("1440" or "1440.0").
func parseMinute(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("time: %w", err)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("time %q is not a whole minute", s)
	}
	return int64(f), nil
}
