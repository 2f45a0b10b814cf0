// Package output serializes simulation results for files and pipes.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bcdannyboy/stocsim/models"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xhhuango/json"
)

// Format is a result encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv, json or msgpack)", s)
	}
}

// Writer encodes SimulationResults. A negative Precision keeps full float64
// precision; otherwise values are rounded half away from zero to Precision
// decimal places.
type Writer struct {
	Format    Format
	Precision int
}

// NewWriter creates a Writer.
func NewWriter(format Format, precision int) *Writer {
	return &Writer{Format: format, Precision: precision}
}

// Write encodes result to dst.
func (w *Writer) Write(dst io.Writer, result models.SimulationResult) error {
	switch w.Format {
	case FormatCSV:
		return w.writeCSV(dst, result)
	case FormatJSON:
		data, err := json.Marshal(w.rounded(result))
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if _, err := dst.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		return nil
	case FormatMsgpack:
		if err := msgpack.NewEncoder(dst).Encode(w.rounded(result)); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", w.Format)
	}
}

// Read decodes a result written in JSON or msgpack.
func Read(src io.Reader, format Format) (models.SimulationResult, error) {
	var result models.SimulationResult
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(src)
		if err != nil {
			return result, fmt.Errorf("failed to read result: %w", err)
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return result, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(src).Decode(&result); err != nil {
			return result, fmt.Errorf("failed to decode result: %w", err)
		}
	default:
		return result, fmt.Errorf("cannot read %q results", format)
	}
	return result, nil
}

func (w *Writer) writeCSV(dst io.Writer, result models.SimulationResult) error {
	cw := csv.NewWriter(dst)

	switch result.Kind {
	case models.KindGBM:
		times := models.StepTimes(result.Params.Horizon, result.Params.Step)
		if err := cw.Write([]string{"path", "step", "time", "value"}); err != nil {
			return err
		}
		for i, path := range result.Paths {
			for k, v := range path {
				record := []string{strconv.Itoa(i), strconv.Itoa(k), w.format(times[k]), w.format(v)}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	case models.KindPoisson:
		if err := cw.Write([]string{"time", "mark"}); err != nil {
			return err
		}
		if result.Jumps != nil {
			for i, t := range result.Jumps.Times {
				if err := cw.Write([]string{w.format(t), strconv.Itoa(result.Jumps.Marks[i])}); err != nil {
					return err
				}
			}
		}
	default:
		return fmt.Errorf("unknown result kind %q", result.Kind)
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) format(v float64) string {
	if w.Precision < 0 || !isFinite(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(int32(w.Precision))
}

func (w *Writer) round(v float64) float64 {
	if w.Precision < 0 || !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(int32(w.Precision)).InexactFloat64()
}

// isFinite guards decimal, which panics on NaN and infinities. Such values
// are written unrounded.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rounded returns a copy of result with every value passed through round.
func (w *Writer) rounded(result models.SimulationResult) models.SimulationResult {
	if w.Precision < 0 {
		return result
	}
	out := result
	if result.Paths != nil {
		out.Paths = make(models.PathSet, len(result.Paths))
		for i, path := range result.Paths {
			out.Paths[i] = make([]float64, len(path))
			for k, v := range path {
				out.Paths[i][k] = w.round(v)
			}
		}
	}
	if result.Jumps != nil {
		jumps := models.JumpSeries{
			Times: make([]float64, len(result.Jumps.Times)),
			Marks: append([]int(nil), result.Jumps.Marks...),
		}
		for i, t := range result.Jumps.Times {
			jumps.Times[i] = w.round(t)
		}
		out.Jumps = &jumps
	}
	return out
}
