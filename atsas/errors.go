/*
 * errors.go, part of gosas.
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

	"github.com/qbead/gosas"
)

// Error is the atsas package error type. It implements sas.Error. The
// critical field separates errors that abort a pipeline from per-run
// failures that only exclude one model.
type Error struct {
	message  string
	program  string
	name     string //the run name associated to the error, if any
	extra    string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.extra != "" {
		return fmt.Sprintf("%s run %s: %s (%s)", err.program, err.name, err.message, err.extra)
	}
	return fmt.Sprintf("%s run %s: %s", err.program, err.name, err.message)
}

// Decorate adds the dec string to the decoration slice of the error, and
// returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error voids the whole reconstruction, false
// when it only affects a single run.
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	err2 := err.(sas.Error)
	err2.Decorate(caller)
	return err2
}

//Program names, for error reporting.
const (
	Dammif = "DAMMIF"
	Dammin = "DAMMIN"
	Damave = "DAMAVER"
	Cifsu  = "CIFSUP"
	Sasre  = "SASRES"
)

const (
	ErrMissingInput    = "Input file not found"
	ErrCantInput       = "Can't build input for the run"
	ErrNotRunning      = "Couldn't run the program"
	ErrNoModel         = "Couldn't read the model produced"
	ErrNoStats         = "Couldn't parse the run statistics"
	ErrProbableProblem = "Probable problem in run"
	ErrNoNSD           = "Couldn't parse the NSD from the output"
	ErrNoResolution    = "Couldn't parse the resolution from the output"
	ErrNoVersion       = "Couldn't determine the program version"
	ErrCanceled        = "Reconstruction canceled"
)
