/*
 * pipeline.go, part of gosas.
 *
 * Copyright 2025 The gosas authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package atsas

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// Pipeline drives a full bead-model reconstruction: several independent
// DAMMIF runs, averaging and filtering with DAMAVER, optionally a DAMMIN
// refinement started from the damstart model, optional superimposition of
// everything onto a reference structure with CIFSUP, and a SASRES
// resolution estimate. The runs of a pipeline with prefix P are named
// P_01, P_02... so their models are P_01-1.cif, P_02-1.cif and so on.
type Pipeline struct {
	Prefix  string
	GnomOut string //the P(r) input, a GNOM-style .out file
	Runs    int
	Workers int     //max concurrent DAMMIF runs. 0 means NumCPU.
	Par     *Params //options passed to every modeling run

	Refine     bool   //run DAMMIN from the damstart model
	AlignTo    string //reference structure to superimpose onto, "" for none
	Resolution bool   //run SASRES on the aligned set

	DammifCommand  string
	DamminCommand  string
	DamaverCommand string
	CifsupCommand  string
	SasresCommand  string

	OnStatus func(PipelineStatus)
	Cancel   chan struct{}
}

// PipelineStatus reports the progress of a running pipeline.
type PipelineStatus struct {
	Stage string //"dammif", "damaver", "dammin", "cifsup", "sasres"
	Run   int    //1-based run number within the stage, 0 if not per-run
	Total int
	Err   error //non-nil when a single run failed but the pipeline goes on
}

// RunResult is the outcome of one modeling run.
type RunResult struct {
	Name      string
	ModelFile string
	Stats     *Stats
	NSD       float64
	Included  bool
	Err       error
}

// Results is everything a finished pipeline produced.
type Results struct {
	Runs []RunResult

	MeanNSD   float64
	NSDStdDev float64

	Averaged string //<prefix>_damaver_aligned.cif
	Filtered string //<prefix>_damfilt.cif
	Damstart string //<prefix>_damstart.cif

	Refined      string //refine_<prefix>-1.cif, "" when not refined
	RefinedStats *Stats

	Aligned []string //the *_aligned.cif files, when aligning to a reference

	Resolution   float64 //in Angstrom, 0 when sasres was not run
	ResolutionSD float64
}

// NewPipeline returns a pipeline with the usual defaults: 15 runs, fast
// mode, refinement on.
func NewPipeline(prefix, gnomout string) *Pipeline {
	p := new(Pipeline)
	p.Prefix = prefix
	p.GnomOut = gnomout
	p.Runs = 15
	p.Refine = true
	p.Resolution = true
	p.Par = new(Params)
	p.Par.SetDefaults()
	p.DammifCommand = "dammif"
	p.DamminCommand = "dammin"
	p.DamaverCommand = "damaver"
	p.CifsupCommand = "cifsup"
	p.SasresCommand = "sasres"
	return p
}

func (O *Pipeline) status(s PipelineStatus) {
	if O.OnStatus != nil {
		O.OnStatus(s)
	}
}

func (O *Pipeline) canceled() bool {
	if O.Cancel == nil {
		return false
	}
	select {
	case <-O.Cancel:
		return true
	default:
		return false
	}
}

// runName returns the name of the n-th (1-based) modeling run.
func (O *Pipeline) runName(n int) string {
	return fmt.Sprintf("%s_%02d", O.Prefix, n)
}

// Run executes the whole pipeline and returns its results. Individual
// modeling runs that fail are reported through OnStatus and excluded from
// the averaging, but don't abort the pipeline as long as at least two
// runs survive. Errors from the averaging stage onwards are fatal.
func (O *Pipeline) Run() (*Results, error) {
	if O.Runs < 1 {
		O.Runs = 1
	}
	res := new(Results)
	res.Runs = O.dammifStage()
	if O.canceled() {
		return nil, Error{ErrCanceled, Dammif, O.Prefix, "", []string{"Run"}, true}
	}
	models := make([]string, 0, len(res.Runs))
	for _, r := range res.Runs {
		if r.Err == nil {
			models = append(models, r.ModelFile)
		}
	}
	if len(models) < 2 {
		return nil, Error{ErrProbableProblem, Dammif, O.Prefix, "fewer than 2 runs produced a model", []string{"Run"}, true}
	}
	if err := O.damaverStage(res, models); err != nil {
		return nil, errDecorate(err, "Run")
	}
	if O.canceled() {
		return nil, Error{ErrCanceled, Damave, O.Prefix, "", []string{"Run"}, true}
	}
	if O.Refine && res.Damstart != "" {
		if err := O.refineStage(res); err != nil {
			//a failed refinement still leaves a usable averaged model
			O.status(PipelineStatus{Stage: "dammin", Err: err})
		}
	}
	if O.AlignTo != "" {
		O.alignStage(res, models)
	}
	if O.Resolution {
		if err := O.resolutionStage(res); err != nil {
			O.status(PipelineStatus{Stage: "sasres", Err: err})
		}
	}
	return res, nil
}

func (O *Pipeline) dammifStage() []RunResult {
	workers := O.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > O.Runs {
		workers = O.Runs
	}
	results := make([]RunResult, O.Runs)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = O.oneDammif(i + 1)
				O.status(PipelineStatus{Stage: "dammif", Run: i + 1, Total: O.Runs, Err: results[i].Err})
			}
		}()
	}
	for i := 0; i < O.Runs; i++ {
		if O.canceled() {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (O *Pipeline) oneDammif(n int) RunResult {
	r := RunResult{Name: O.runName(n)}
	h := NewDammifHandle()
	h.SetCommand(O.DammifCommand)
	h.SetName(r.Name)
	if err := h.BuildInput(O.GnomOut, O.Par); err != nil {
		r.Err = errDecorate(err, "oneDammif")
		return r
	}
	if err := h.Run(true); err != nil {
		r.Err = errDecorate(err, "oneDammif")
		return r
	}
	if _, err := h.Model(); err != nil {
		r.Err = errDecorate(err, "oneDammif")
		return r
	}
	r.ModelFile = h.ModelFile()
	st, err := h.Stats()
	if err != nil {
		r.Err = errDecorate(err, "oneDammif")
		return r
	}
	r.Stats = st
	return r
}

func (O *Pipeline) damaverStage(res *Results, models []string) error {
	O.status(PipelineStatus{Stage: "damaver", Total: 1})
	d := NewDamaver()
	d.SetCommand(O.DamaverCommand)
	d.SetPrefix(O.Prefix)
	if err := d.BuildInput(models); err != nil {
		return err
	}
	if err := d.Run(true); err != nil {
		return err
	}
	var err error
	if res.MeanNSD, res.NSDStdDev, err = d.MeanNSD(); err != nil {
		return err
	}
	entries, err := d.PerModel()
	if err != nil {
		return err
	}
	for _, e := range entries {
		for i := range res.Runs {
			if res.Runs[i].ModelFile == e.File {
				res.Runs[i].NSD = e.NSD
				res.Runs[i].Included = e.Included
			}
		}
	}
	res.Averaged, res.Filtered, res.Damstart, err = d.Collect()
	return err
}

func (O *Pipeline) refineStage(res *Results) error {
	O.status(PipelineStatus{Stage: "dammin", Total: 1})
	h := NewDamminHandle()
	h.SetCommand(O.DamminCommand)
	h.SetName("refine_" + O.Prefix)
	h.SetInitial(res.Damstart)
	if err := h.BuildInput(O.GnomOut, O.Par); err != nil {
		return err
	}
	if err := h.Run(true); err != nil {
		return err
	}
	if _, err := h.Model(); err != nil {
		return err
	}
	res.Refined = h.ModelFile()
	st, err := h.Stats()
	if err != nil {
		return err
	}
	res.RefinedStats = st
	return nil
}

// alignStage superimposes the averaged model, the refined model if any,
// and every individual model onto the reference. Failures are per-file.
func (O *Pipeline) alignStage(res *Results, models []string) {
	c := NewCifsup()
	c.SetCommand(O.CifsupCommand)
	targets := make([]string, 0, len(models)+2)
	if res.Averaged != "" {
		targets = append(targets, res.Averaged)
	}
	if res.Refined != "" {
		targets = append(targets, res.Refined)
	}
	targets = append(targets, models...)
	for i, t := range targets {
		if O.canceled() {
			return
		}
		aligned, err := c.Align(O.AlignTo, t)
		O.status(PipelineStatus{Stage: "cifsup", Run: i + 1, Total: len(targets), Err: err})
		if err == nil {
			res.Aligned = append(res.Aligned, aligned)
		}
	}
}

func (O *Pipeline) resolutionStage(res *Results) error {
	O.status(PipelineStatus{Stage: "sasres", Total: 1})
	s := NewSasres()
	s.SetCommand(O.SasresCommand)
	s.SetPrefix(O.Prefix)
	files := res.Aligned
	if len(files) == 0 {
		//sasres wants the aligned set; without a reference alignment the
		//damaver-aligned models serve
		for _, r := range res.Runs {
			if r.Err == nil {
				files = append(files, r.ModelFile)
			}
		}
	}
	if err := s.Run(files); err != nil {
		return err
	}
	var err error
	res.Resolution, res.ResolutionSD, err = s.Resolution()
	return err
}

// csvFloat formats a value for the results table. NaN (a Dmax recent
// DAMMIN versions don't report) becomes an empty cell.
func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// WriteCSV writes the per-run summary table to <prefix>_dammif_results.csv,
// one row per modeling run plus a row for the refined model when present.
func (O *Pipeline) WriteCSV(res *Results) (string, error) {
	name := fmt.Sprintf("%s_dammif_results.csv", O.Prefix)
	f, err := os.Create(name)
	if err != nil {
		return "", Error{ErrCantInput, Dammif, O.Prefix, err.Error(), []string{"os.Create", "WriteCSV"}, true}
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"Model", "Chi^2", "Rg", "Dmax", "Excluded Volume", "MW Estimate", "NSD", "Included"}
	if err := w.Write(header); err != nil {
		return "", Error{ErrCantInput, Dammif, O.Prefix, err.Error(), []string{"csv.Write", "WriteCSV"}, true}
	}
	row := func(name string, st *Stats, nsd float64, included bool, withNSD bool) []string {
		r := []string{name, csvFloat(st.ChiSq), csvFloat(st.Rg), csvFloat(st.Dmax),
			csvFloat(st.ExcludedVolume), csvFloat(st.MWEstimate), "", ""}
		if withNSD {
			r[6] = csvFloat(nsd)
			r[7] = strconv.FormatBool(included)
		}
		return r
	}
	for _, r := range res.Runs {
		if r.Err != nil || r.Stats == nil {
			continue
		}
		if err := w.Write(row(r.Name, r.Stats, r.NSD, r.Included, true)); err != nil {
			return "", Error{ErrCantInput, Dammif, O.Prefix, err.Error(), []string{"csv.Write", "WriteCSV"}, true}
		}
	}
	if res.Refined != "" && res.RefinedStats != nil {
		if err := w.Write(row("refine_"+O.Prefix, res.RefinedStats, 0, false, false)); err != nil {
			return "", Error{ErrCantInput, Dammif, O.Prefix, err.Error(), []string{"csv.Write", "WriteCSV"}, true}
		}
	}
	w.Write([]string{})
	w.Write([]string{"Mean NSD", csvFloat(res.MeanNSD)})
	w.Write([]string{"NSD Standard deviation", csvFloat(res.NSDStdDev)})
	if res.Resolution != 0 {
		w.Write([]string{"Resolution (A)", csvFloat(res.Resolution)})
		w.Write([]string{"Resolution SD (A)", csvFloat(res.ResolutionSD)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", Error{ErrCantInput, Dammif, O.Prefix, err.Error(), []string{"csv.Flush", "WriteCSV"}, true}
	}
	return name, nil
}
