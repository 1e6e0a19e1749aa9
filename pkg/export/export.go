package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/batlife/core/soh"
)

// jsonStep is the exported shape of a simulation step.
type jsonStep struct {
	Day  int     `json:"day"`
	SOH  float64 `json:"soh"`
	Loss float64 `json:"loss"`
}

// WriteJSON writes the trajectory to w as a JSON array.
func WriteJSON(w io.Writer, steps []soh.Step) error {
	out := make([]jsonStep, len(steps))
	for i, s := range steps {
		out[i] = jsonStep{Day: s.Day, SOH: s.SOH, Loss: s.Loss}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes the trajectory to w with a day,soh,loss header.
func WriteCSV(w io.Writer, steps []soh.Step) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "soh", "loss"}); err != nil {
		return err
	}
	for _, s := range steps {
		rec := []string{
			strconv.Itoa(s.Day),
			strconv.FormatFloat(s.SOH, 'f', -1, 64),
			strconv.FormatFloat(s.Loss, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format ("csv" or "json").
func Write(w io.Writer, format string, steps []soh.Step) error {
	switch format {
	case "json":
		return WriteJSON(w, steps)
	case "csv", "":
		return WriteCSV(w, steps)
	default:
		return &UnknownFormatError{Format: format}
	}
}

// UnknownFormatError is returned by Write for unsupported formats.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return "unknown export format " + strconv.Quote(e.Format)
}
