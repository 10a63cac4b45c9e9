/*
 * damaver.go, part of gosas.
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
	"strconv"
	"strings"
)

// Damaver aligns a set of dummy-atom models, computes their pairwise NSD,
// discards outliers, and averages the rest into consensus models. After a
// successful run and Collect, the averaged model is <prefix>_damaver_aligned.cif,
// the filtered consensus <prefix>_damfilt.cif, and the refinement seed
// <prefix>_damstart.cif.
type Damaver struct {
	command string
	prefix  string
	files   []string
}

func NewDamaver() *Damaver {
	d := new(Damaver)
	d.command = "damaver"
	return d
}

func (O *Damaver) SetCommand(name string) {
	O.command = name
}

func (O *Damaver) SetPrefix(prefix string) {
	O.prefix = prefix
}

// BuildInput validates the list of model files to average.
func (O *Damaver) BuildInput(files []string) error {
	if O.prefix == "" {
		O.prefix = "gosas"
	}
	if len(files) < 2 {
		return Error{ErrMissingInput, Damave, O.prefix, "need at least 2 models", []string{"BuildInput"}, true}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return Error{ErrMissingInput, Damave, O.prefix, f, []string{"BuildInput"}, true}
		}
	}
	O.files = files
	return nil
}

// Run runs damaver over the set. It waits or not for the result depending
// on wait.
func (O *Damaver) Run(wait bool) error {
	com := fmt.Sprintf(" --automatic %s > %s_damaver.log 2>&1", strings.Join(O.files, " "), O.prefix)
	var err error
	if wait {
		command := exec.Command("sh", "-c", O.command+com)
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, Damave, O.prefix, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

func (O *Damaver) logFile() string {
	return fmt.Sprintf("%s_damaver.log", O.prefix)
}

// MeanNSD parses the mean normalized spatial discrepancy of the set and
// its standard deviation from the damaver output.
func (O *Damaver) MeanNSD() (float64, float64, error) {
	mean, err := logValue(O.logFile(), "Mean NSD")
	if err != nil {
		return 0, 0, Error{ErrNoNSD, Damave, O.prefix, err.Error(), []string{"logValue", "MeanNSD"}, true}
	}
	sd, err := logValue(O.logFile(), "Standard deviation")
	if err != nil {
		//older damaver versions don't print it
		sd = 0
	}
	return mean, sd, nil
}

// NSDEntry is the per-model result of the averaging: the NSD of the model
// against the rest of the set, and whether damaver kept it.
type NSDEntry struct {
	File     string
	NSD      float64
	Included bool
}

// PerModel parses the per-model NSD table from the damaver output. Lines
// look like "model_01-1.cif  NSD  0.512  included".
func (O *Damaver) PerModel() ([]NSDEntry, error) {
	buf, err := os.ReadFile(O.logFile())
	if err != nil {
		return nil, Error{ErrNoNSD, Damave, O.prefix, err.Error(), []string{"os.ReadFile", "PerModel"}, true}
	}
	var entries []NSDEntry
	for _, line := range strings.Split(string(buf), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 || fields[1] != "NSD" {
			continue
		}
		nsd, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		entries = append(entries, NSDEntry{fields[0], nsd, fields[3] == "included"})
	}
	if entries == nil {
		return nil, Error{ErrNoNSD, Damave, O.prefix, "no per-model table found", []string{"PerModel"}, true}
	}
	return entries, nil
}

//The default output names damaver writes, renamed by Collect to the
//prefixed convention the rest of the pipeline works with.
var damaverOutputs = map[string]string{
	"damaver.cif":  "%s_damaver_aligned.cif",
	"damfilt.cif":  "%s_damfilt.cif",
	"damstart.cif": "%s_damstart.cif",
}

// Collect renames the damaver output files to their prefixed names and
// returns the names of the averaged, filtered and damstart files, in that
// order. Outputs the program did not produce are returned as empty
// strings.
func (O *Damaver) Collect() (string, string, string, error) {
	get := func(def, format string) string {
		name := fmt.Sprintf(format, O.prefix)
		if _, err := os.Stat(name); err == nil { //already collected
			return name
		}
		if _, err := os.Stat(def); err != nil {
			return ""
		}
		if err := os.Rename(def, name); err != nil {
			return ""
		}
		return name
	}
	averaged := get("damaver.cif", damaverOutputs["damaver.cif"])
	filtered := get("damfilt.cif", damaverOutputs["damfilt.cif"])
	damstart := get("damstart.cif", damaverOutputs["damstart.cif"])
	if averaged == "" {
		return "", "", "", Error{ErrNoModel, Damave, O.prefix, "no averaged model produced", []string{"Collect"}, true}
	}
	return averaged, filtered, damstart, nil
}
