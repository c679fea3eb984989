// Package table writes and reads the per-condition feature tables as CSV
package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"eogfeat/internal/core/features"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/services/features/domain"
)

// Header is the column order of a feature table
var Header = []string{
	"Subject", "Condition", "Blink Rate", "Fixation Duration", "Saccade Amplitude", "Eye Movement Velocity",
}

// SkippedHeader is the column order of the skip report
var SkippedHeader = []string{"Subject", "Condition", "Source", "Kind", "Reason"}

// SkippedFile is the skip report name inside the output dir
const SkippedFile = "EOG_Skipped.csv"

// FileName is the table name for one condition, e.g. EOG_Features_HAPPY.csv
func FileName(c features.Condition) string { return "EOG_Features_" + c.Tag() + ".csv" }

// Write emits Header then one line per record; an absent fixation is an empty cell
func Write(w io.Writer, rows []features.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		fix := ""
		if r.FixationDuration != nil {
			fix = num(*r.FixationDuration)
		}
		rec := []string{r.Subject, r.Condition.Tag(), num(r.BlinkRate), fix, num(r.SaccadeAmplitude), num(r.Velocity)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a table written by Write; an empty or NaN fixation cell reads back as absent
func Read(r io.Reader) ([]features.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeRead, "read table")
	}
	if len(lines) == 0 {
		return nil, perr.Readf("table has no header")
	}
	for i, h := range Header {
		if lines[0][i] != h {
			return nil, perr.Readf("unexpected column %d %q, want %q", i, lines[0][i], h)
		}
	}

	out := make([]features.Record, 0, len(lines)-1)
	for n, l := range lines[1:] {
		rec, err := parse(l)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeRead, "line %d", n+2)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parse(l []string) (features.Record, error) {
	cond, err := features.ParseCondition(l[1])
	if err != nil {
		return features.Record{}, err
	}
	rec := features.Record{Subject: l[0], Condition: cond}
	if rec.BlinkRate, err = strconv.ParseFloat(l[2], 64); err != nil {
		return rec, err
	}
	if l[3] != "" && l[3] != "NaN" {
		v, err := strconv.ParseFloat(l[3], 64)
		if err != nil {
			return rec, err
		}
		rec.FixationDuration = &v
	}
	if rec.SaccadeAmplitude, err = strconv.ParseFloat(l[4], 64); err != nil {
		return rec, err
	}
	rec.Velocity, err = strconv.ParseFloat(l[5], 64)
	return rec, err
}

// WriteSkipped emits the skip report
func WriteSkipped(w io.Writer, xs []domain.Skipped) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SkippedHeader); err != nil {
		return err
	}
	for _, s := range xs {
		if err := cw.Write([]string{s.Recording.Subject, s.Recording.Condition.Tag(), s.Recording.Source, s.Kind, s.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDir writes one table per condition (header only when empty) plus the skip report; returns the paths
func WriteDir(dir string, res domain.BatchResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	by := res.ByCondition()
	var paths []string
	for _, c := range features.Conditions() {
		p := filepath.Join(dir, FileName(c))
		if err := writeFile(p, func(w io.Writer) error { return Write(w, by[c]) }); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	p := filepath.Join(dir, SkippedFile)
	if err := writeFile(p, func(w io.Writer) error { return WriteSkipped(w, res.Skipped) }); err != nil {
		return paths, err
	}
	return append(paths, p), nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
