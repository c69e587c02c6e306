// Package export writes flight paths and formation plans to disk: CSV rows
// for the flight controller and JSON for reloading plans.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"choreo-planner/internal/formation"
	"choreo-planner/internal/log"
	"choreo-planner/internal/waypoint"
)

// File name suffixes.
const (
	SuffixLightPainting = "_lp_wpts.csv"
	SuffixInitialGrid   = "_mdf_initial_grid.csv"
	SuffixFormation     = "_mdf_wpts.csv"
)

var ErrIncompletePlan = errors.New("formation plan is incomplete")

// Name returns the base name of an input file without its extension.
func Name(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WritePathCSV writes one (altitude, x, y[, signal]) row per waypoint.
func WritePathCSV(w io.Writer, path waypoint.Path) error {
	return writeRows(w, path.Rows())
}

// WritePlanCSV writes the initial grid and the assigned goal of every grid
// slot as (depth, x, y) rows. Incomplete plans are refused.
func WritePlanCSV(grid, goals io.Writer, plan *formation.Plan) error {
	if plan == nil || !plan.Complete {
		return ErrIncompletePlan
	}

	gridRows := make([][]float64, len(plan.InitialGrid))
	for i, p := range plan.InitialGrid {
		gridRows[i] = p.Row()
	}
	if err := writeRows(grid, gridRows); err != nil {
		return fmt.Errorf("failed to write initial grid: %w", err)
	}

	goalRows := make([][]float64, len(plan.Assigned))
	for i, p := range plan.Assigned {
		goalRows[i] = p.Row()
	}
	if err := writeRows(goals, goalRows); err != nil {
		return fmt.Errorf("failed to write assignments: %w", err)
	}
	return nil
}

func writeRows(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	record := []string{}
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Writer places output files named after an input in Dir.
type Writer struct {
	Dir    string
	Name   string
	Logger *log.Logger
}

// LightPainting writes <Name>_lp_wpts.csv and returns its path.
func (w Writer) LightPainting(path waypoint.Path) (string, error) {
	file := filepath.Join(w.Dir, w.Name+SuffixLightPainting)
	err := writeFile(file, func(f io.Writer) error { return WritePathCSV(f, path) })
	if err != nil {
		return "", err
	}
	w.Logger.Infof("wrote %d waypoints to %s", path.Len(), file)
	return file, nil
}

// Formation writes <Name>_mdf_initial_grid.csv and <Name>_mdf_wpts.csv.
func (w Writer) Formation(plan *formation.Plan) (gridFile, goalFile string, err error) {
	if plan == nil || !plan.Complete {
		return "", "", ErrIncompletePlan
	}

	gridFile = filepath.Join(w.Dir, w.Name+SuffixInitialGrid)
	goalFile = filepath.Join(w.Dir, w.Name+SuffixFormation)

	err = writeFile(gridFile, func(gf io.Writer) error {
		return writeFile(goalFile, func(wf io.Writer) error {
			return WritePlanCSV(gf, wf, plan)
		})
	})
	if err != nil {
		return "", "", err
	}
	w.Logger.Infof("wrote formation for %d vehicles to %s and %s", len(plan.Assigned), gridFile, goalFile)
	return gridFile, goalFile, nil
}

func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}
