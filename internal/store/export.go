package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
)

// ExportData is the JSON form of a stored run.
type ExportData struct {
	Run     RunMetadata `json:"run"`
	Columns []string    `json:"columns"`
	Ticks   []uint64    `json:"ticks"`
	Times   []float64   `json:"times"`
	Rows    [][]float64 `json:"rows"`
}

// WriteCSV writes a header of tick, time and the series columns followed by
// one row per sample.
func WriteCSV(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)

	header := append([]string{"tick", "time"}, s.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, vals := range s.Rows {
		row := make([]string, 0, len(vals)+2)
		row = append(row, strconv.FormatUint(s.Ticks[i], 10))
		row = append(row, strconv.FormatFloat(s.Times[i], 'g', -1, 64))
		for _, v := range vals {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, meta RunMetadata, s *Series) error {
	data := ExportData{
		Run:     meta,
		Columns: s.Columns,
		Ticks:   s.Ticks,
		Times:   s.Times,
		Rows:    s.Rows,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the series of runID to path, or to stdout when path is
// empty or "-".
func ExportCSV(st Store, runID, path string) error {
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	return withOutput(path, func(w io.Writer) error {
		return WriteCSV(w, series)
	})
}

// ExportJSON writes metadata and series of runID to path, or to stdout when
// path is empty or "-".
func ExportJSON(st Store, runID, path string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	return withOutput(path, func(w io.Writer) error {
		return WriteJSON(w, *meta, series)
	})
}

func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
