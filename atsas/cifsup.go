/*
 * cifsup.go, part of gosas.
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
	"path/filepath"
	"strings"
)

// Cifsup superimposes models onto a reference structure, the way the
// tutorials align every reconstruction onto a known shape or onto the
// refined model. Aligning file.cif produces file_aligned.cif.
type Cifsup struct {
	command string
}

func NewCifsup() *Cifsup {
	c := new(Cifsup)
	c.command = "cifsup"
	return c
}

func (O *Cifsup) SetCommand(name string) {
	O.command = name
}

// AlignedName returns the name the aligned copy of a model file gets.
func AlignedName(movable string) string {
	ext := filepath.Ext(movable)
	return strings.TrimSuffix(movable, ext) + "_aligned" + ext
}

// Align superimposes movable onto template and returns the name of the
// aligned file written. The run always waits; cifsup runs are fast and the
// callers need the file immediately.
func (O *Cifsup) Align(template, movable string) (string, error) {
	for _, f := range []string{template, movable} {
		if _, err := os.Stat(f); err != nil {
			return "", Error{ErrMissingInput, Cifsu, movable, f, []string{"Align"}, true}
		}
	}
	out := AlignedName(movable)
	com := fmt.Sprintf(" -o %s %s %s > %s.log 2>&1", out, movable, template, strings.TrimSuffix(out, filepath.Ext(out)))
	command := exec.Command("sh", "-c", O.command+com)
	if err := command.Run(); err != nil {
		return "", Error{ErrNotRunning, Cifsu, movable, err.Error(), []string{"exec.Run", "Align"}, true}
	}
	if _, err := os.Stat(out); err != nil {
		return "", Error{ErrNoModel, Cifsu, movable, out, []string{"Align"}, true}
	}
	return out, nil
}
