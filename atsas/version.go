/*
 * version.go, part of gosas.
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
	"os/exec"
	"strconv"
	"strings"
)

// Version is an ATSAS release version. The suite reports versions such as
// "3.0.3" or "3.2.1"; what a given program prints (and omits) in its log
// changes between releases, so some parsers need to know which one they
// are dealing with.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast returns whether v is ma.mi.pa or newer.
func (v Version) AtLeast(ma, mi, pa int) bool {
	if v.Major != ma {
		return v.Major > ma
	}
	if v.Minor != mi {
		return v.Minor > mi
	}
	return v.Patch >= pa
}

// ParseVersion extracts a version from a string such as
// "dammif, ATSAS 3.2.1 (r14731)". It takes the first dot-separated
// numeric token it finds.
func ParseVersion(s string) (Version, error) {
	for _, f := range strings.Fields(s) {
		f = strings.TrimRight(f, ",;")
		parts := strings.Split(f, ".")
		if len(parts) < 2 {
			continue
		}
		ma, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		mi, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		var pa int
		if len(parts) >= 3 {
			pa, _ = strconv.Atoi(parts[2])
		}
		return Version{ma, mi, pa}, nil
	}
	return Version{}, Error{ErrNoVersion, "", "", s, []string{"ParseVersion"}, false}
}

// ProgramVersion asks an ATSAS program for its version. All the suite's
// programs answer --version with a one-liner naming the release.
func ProgramVersion(command string) (Version, error) {
	out, err := exec.Command(command, "--version").Output()
	if err != nil {
		return Version{}, Error{ErrNoVersion, "", command, err.Error(), []string{"exec.Output", "ProgramVersion"}, false}
	}
	v, err2 := ParseVersion(string(out))
	if err2 != nil {
		return Version{}, errDecorate(err2, "ProgramVersion")
	}
	return v, nil
}
