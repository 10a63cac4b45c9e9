/*
 * dammif.go, part of gosas.
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
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/qbead/gosas"
)

// DammifHandle runs DAMMIF, the fast ab-initio dummy-atom modeling program.
// A run with name N produces the model N-1.cif, the fit N.fir and the log
// N.log.
type DammifHandle struct {
	command string
	name    string
	options []string
}

func NewDammifHandle() *DammifHandle {
	run := new(DammifHandle)
	run.SetDefaults()
	return run
}

//DammifHandle methods

func (O *DammifHandle) SetName(name string) {
	O.name = name
}

func (O *DammifHandle) SetCommand(name string) {
	O.command = name
}

func (O *DammifHandle) Command() string {
	return O.command
}

func (O *DammifHandle) SetDefaults() {
	O.command = "dammif"
}

// BuildInput prepares a DAMMIF run against the given GNOM-style .out file.
// DAMMIF takes everything on the command line, so this only validates the
// input file and assembles the options.
func (O *DammifHandle) BuildInput(gnomout string, par *Params) error {
	if O.name == "" {
		O.name = "gosas"
	}
	if par == nil {
		par = new(Params)
		par.SetDefaults()
	}
	if _, err := os.Stat(gnomout); err != nil {
		return Error{ErrMissingInput, Dammif, O.name, gnomout, []string{"BuildInput"}, true}
	}
	O.options = make([]string, 0, 8)
	O.options = append(O.options, fmt.Sprintf("--prefix=%s", O.name))
	if isInString([]string{"fast", "slow", "interactive"}, par.Mode) {
		O.options = append(O.options, "--mode="+par.Mode)
	} else {
		O.options = append(O.options, "--mode=fast") //default mode
	}
	if par.Symmetry != "" {
		O.options = append(O.options, "--symmetry="+par.Symmetry)
	}
	if isInString([]string{"prolate", "oblate"}, par.Anisometry) {
		O.options = append(O.options, "--anisometry="+par.Anisometry)
	}
	if par.Units != "" {
		O.options = append(O.options, "--unit="+par.Units)
	}
	if par.Chained {
		O.options = append(O.options, "--chained")
	}
	if par.Seed != 0 {
		O.options = append(O.options, fmt.Sprintf("--seed=%d", par.Seed))
	}
	O.options = append(O.options, par.Extra...)
	O.options = append(O.options, gnomout)
	return nil
}

// Run runs the command given by the string O.command. It waits or not for
// the result depending on wait. Not waiting for results works only for
// unix-compatible systems, as it uses sh and nohup.
func (O *DammifHandle) Run(wait bool) error {
	com := fmt.Sprintf(" %s > %s.log 2>&1", strings.Join(O.options, " "), O.name)
	var err error
	if wait {
		command := exec.Command("sh", "-c", O.command+com)
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, Dammif, O.name, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

// normalTermination checks that the run wrote its finish mark to the log.
func (O *DammifHandle) normalTermination() bool {
	return searchBackwards("Finished", fmt.Sprintf("%s.log", O.name)) != ""
}

// ModelFile returns the name of the model file a finished run produces,
// N-1.cif for a run named N.
func (O *DammifHandle) ModelFile() string {
	return O.name + "-1.cif"
}

// Model reads the dummy-atom model from a finished run.
func (O *DammifHandle) Model() (*sas.Model, error) {
	if !O.normalTermination() {
		return nil, Error{ErrProbableProblem, Dammif, O.name, "", []string{"Model"}, false}
	}
	model, err := sas.CIFFileRead(O.ModelFile())
	if err != nil {
		return nil, Error{ErrNoModel, Dammif, O.name, err.Error(), []string{"sas.CIFFileRead", "Model"}, true}
	}
	return model, nil
}

// Stats parses the statistics of a finished run from its log.
func (O *DammifHandle) Stats() (*Stats, error) {
	return parseRunStats(Dammif, O.name, fmt.Sprintf("%s.log", O.name), false)
}

//The ATSAS logs report every value in a "Label .... : value" line. The
//labels below are stable across the 3.x series.
const (
	chiSqMark    = "Final Chi^2 against raw data"
	rgMark       = "Radius of gyration"
	dmaxMark     = "Maximum particle diameter"
	excvolMark   = "Total excluded DAM volume"
	mwMark       = "Molecular weight estimate"
	finishedMark = "Finished"
)

// logValue extracts the numeric value from an ATSAS "Label ... : value"
// log line found by scanning the file backwards for the mark. Returns an
// error when the mark is absent or the value doesn't parse.
func logValue(logfile, mark string) (float64, error) {
	line := searchBackwards(mark, logfile)
	if line == "" {
		return 0, fmt.Errorf("No %q line in %s", mark, logfile)
	}
	fields := strings.Split(line, ":")
	if len(fields) < 2 {
		return 0, fmt.Errorf("Malformed %q line in %s", mark, logfile)
	}
	last := strings.Fields(fields[len(fields)-1])
	if len(last) == 0 {
		return 0, fmt.Errorf("Empty value in %q line in %s", mark, logfile)
	}
	return strconv.ParseFloat(last[0], 64)
}

// parseRunStats recovers the Stats of a dammif/dammin run from its log.
// With dmaxOptional, a missing diameter line yields NaN instead of an
// error, the behavior needed for DAMMIN from ATSAS 3.1.0 on, which does
// not report Dmax.
func parseRunStats(program, name, logfile string, dmaxOptional bool) (*Stats, error) {
	st := new(Stats)
	var err error
	if st.ChiSq, err = logValue(logfile, chiSqMark); err != nil {
		return nil, Error{ErrNoStats, program, name, err.Error(), []string{"logValue", "Stats"}, true}
	}
	if st.Rg, err = logValue(logfile, rgMark); err != nil {
		return nil, Error{ErrNoStats, program, name, err.Error(), []string{"logValue", "Stats"}, true}
	}
	if st.Dmax, err = logValue(logfile, dmaxMark); err != nil {
		if !dmaxOptional {
			return nil, Error{ErrNoStats, program, name, err.Error(), []string{"logValue", "Stats"}, true}
		}
		st.Dmax = math.NaN()
	}
	//these two are informative only, we don't fail a run over them
	st.ExcludedVolume, _ = logValue(logfile, excvolMark)
	st.MWEstimate, _ = logValue(logfile, mwMark)
	return st, nil
}
