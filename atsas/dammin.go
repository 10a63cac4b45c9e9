/*
 * dammin.go, part of gosas.
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
	"os"
	"os/exec"
	"strings"

	"github.com/qbead/gosas"
)

// DamminHandle runs DAMMIN, the simulated-annealing dummy-atom modeling
// program. It is mostly used here to refine an averaged model: started
// from a damstart file it anneals only the loose periphery of the fixed
// core. Refinement runs are conventionally named refine_<prefix>, which
// makes the output model refine_<prefix>-1.cif.
type DamminHandle struct {
	command  string
	name     string
	initial  string //damstart file for refinement runs, empty otherwise
	options  []string
	version  Version
	haveVers bool
}

func NewDamminHandle() *DamminHandle {
	run := new(DamminHandle)
	run.SetDefaults()
	return run
}

//DamminHandle methods

func (O *DamminHandle) SetName(name string) {
	O.name = name
}

func (O *DamminHandle) SetCommand(name string) {
	O.command = name
}

func (O *DamminHandle) Command() string {
	return O.command
}

func (O *DamminHandle) SetDefaults() {
	O.command = "dammin"
}

// SetInitial sets a damstart file to refine from. The run then keeps the
// fixed core of the starting model.
func (O *DamminHandle) SetInitial(damstart string) {
	O.initial = damstart
}

// SetVersion tells the handle which ATSAS version the binary belongs to,
// so Stats knows whether a Dmax can be expected in the output. If not
// called, Stats will query the binary itself.
func (O *DamminHandle) SetVersion(v Version) {
	O.version = v
	O.haveVers = true
}

func (O *DamminHandle) BuildInput(gnomout string, par *Params) error {
	if O.name == "" {
		O.name = "gosas"
	}
	if par == nil {
		par = new(Params)
		par.SetDefaults()
	}
	if _, err := os.Stat(gnomout); err != nil {
		return Error{ErrMissingInput, Dammin, O.name, gnomout, []string{"BuildInput"}, true}
	}
	if O.initial != "" {
		if _, err := os.Stat(O.initial); err != nil {
			return Error{ErrMissingInput, Dammin, O.name, O.initial, []string{"BuildInput"}, true}
		}
	}
	O.options = make([]string, 0, 8)
	O.options = append(O.options, fmt.Sprintf("--prefix=%s", O.name))
	mode := par.Mode
	if !isInString([]string{"fast", "slow", "interactive"}, mode) {
		mode = "fast"
	}
	O.options = append(O.options, "--mode="+mode)
	if par.Symmetry != "" {
		O.options = append(O.options, "--symmetry="+par.Symmetry)
	}
	if O.initial != "" {
		O.options = append(O.options, "--initial="+O.initial)
	}
	if par.Seed != 0 {
		O.options = append(O.options, fmt.Sprintf("--seed=%d", par.Seed))
	}
	O.options = append(O.options, par.Extra...)
	O.options = append(O.options, gnomout)
	return nil
}

// Run runs the command given by the string O.command. It waits or not for
// the result depending on wait.
func (O *DamminHandle) Run(wait bool) error {
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
		return Error{ErrNotRunning, Dammin, O.name, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

func (O *DamminHandle) normalTermination() bool {
	return searchBackwards(finishedMark, fmt.Sprintf("%s.log", O.name)) != ""
}

// ModelFile returns the name of the model file a finished run produces.
func (O *DamminHandle) ModelFile() string {
	return O.name + "-1.cif"
}

// Model reads the dummy-atom model from a finished run.
func (O *DamminHandle) Model() (*sas.Model, error) {
	if !O.normalTermination() {
		return nil, Error{ErrProbableProblem, Dammin, O.name, "", []string{"Model"}, false}
	}
	model, err := sas.CIFFileRead(O.ModelFile())
	if err != nil {
		return nil, Error{ErrNoModel, Dammin, O.name, err.Error(), []string{"sas.CIFFileRead", "Model"}, true}
	}
	return model, nil
}

// Stats parses the statistics of a finished run from its log. DAMMIN from
// ATSAS 3.1.0 on does not report the maximum particle diameter, so on such
// versions the Dmax field comes back as NaN.
func (O *DamminHandle) Stats() (*Stats, error) {
	if !O.haveVers {
		v, err := ProgramVersion(O.command)
		if err == nil {
			O.version = v
			O.haveVers = true
		} //if the query fails we assume a modern ATSAS and tolerate a missing Dmax
	}
	dmaxOptional := !O.haveVers || O.version.AtLeast(3, 1, 0)
	return parseRunStats(Dammin, O.name, fmt.Sprintf("%s.log", O.name), dmaxOptional)
}
