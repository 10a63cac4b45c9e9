/*
 * files.go, part of gosas.
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

package sas

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// DatRead reads a 3-column (q, I, err) ASCII scattering profile from an
// io.Reader. Header and footer lines, and lines with less than 2 numeric
// fields, are skipped. A 2-column file gets zero errors.
func DatRead(in io.Reader, filename string) (*Profile, error) {
	buf := bufio.NewReader(in)
	var q, i, errs []float64
	for {
		line, rerr := buf.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			qv, err1 := strconv.ParseFloat(fields[0], 64)
			iv, err2 := strconv.ParseFloat(fields[1], 64)
			if err1 == nil && err2 == nil {
				var ev float64
				if len(fields) >= 3 {
					ev, _ = strconv.ParseFloat(fields[2], 64) //a non-numeric third column is common enough, we just zero it
				}
				q = append(q, qv)
				i = append(i, iv)
				errs = append(errs, ev)
			}
		}
		if rerr != nil {
			break
		}
	}
	if len(q) == 0 {
		return nil, cerr("DatRead", "No data points found in %s", filename)
	}
	p, err := NewProfile(i, q, errs, filename)
	if err != nil {
		return nil, errDecorate(err, "DatRead")
	}
	return p, nil
}

// DatFileRead reads a scattering profile from a file. Files ending in .gz
// or .zst are transparently decompressed.
func DatFileRead(name string) (*Profile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "DatFileRead"}}
	}
	defer f.Close()
	var in io.Reader = f
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		g, err := gzip.NewReader(f)
		if err != nil {
			return nil, CError{err.Error(), []string{"gzip.NewReader", "DatFileRead"}}
		}
		defer g.Close()
		in = g
	case ".zst":
		z, err := zstd.NewReader(f)
		if err != nil {
			return nil, CError{err.Error(), []string{"zstd.NewReader", "DatFileRead"}}
		}
		defer z.Close()
		in = z
	}
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".zst")
	return DatRead(in, base)
}

// DatWrite writes the working curve of a profile as 3-column ASCII.
func DatWrite(out io.Writer, p *Profile) error {
	if p == nil {
		return CError{string(ErrNilData), []string{"DatWrite"}}
	}
	fmt.Fprintf(out, "# %s\n", p.Filename())
	fmt.Fprintf(out, "#        Q             I(Q)           Error\n")
	for k := 0; k < p.Len(); k++ {
		if _, err := fmt.Fprintf(out, "%14.6E %14.6E %14.6E\n", p.Q[k], p.I[k], p.Err[k]); err != nil {
			return CError{err.Error(), []string{"fmt.Fprintf", "DatWrite"}}
		}
	}
	return nil
}

// DatFileWrite writes a profile to a file, compressing if the name ends in
// .gz or .zst.
func DatFileWrite(name string, p *Profile) error {
	f, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "DatFileWrite"}}
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		g := gzip.NewWriter(f)
		defer g.Close()
		return DatWrite(g, p)
	case ".zst":
		z, err := zstd.NewWriter(f)
		if err != nil {
			return CError{err.Error(), []string{"zstd.NewWriter", "DatFileWrite"}}
		}
		defer z.Close()
		return DatWrite(z, p)
	}
	return DatWrite(f, p)
}

//GNOM-style .out files. Only the blocks the shape programs actually consume
//are produced: the experimental data with the regularized fit, and the
//distance distribution. The column layout follows the ATSAS convention.

// OutWrite writes an IFT as a GNOM-style .out file, good enough to be fed
// to DAMMIF and DAMMIN.
func OutWrite(out io.Writer, t *IFT) error {
	if t == nil || t.P == nil {
		return CError{string(ErrNilData), []string{"OutWrite"}}
	}
	fmt.Fprintf(out, "           ####    G N O M   ---   Version 5.0   ####\n\n")
	fmt.Fprintf(out, "  Total Estimate : %8.4f\n", t.Evidence)
	fmt.Fprintf(out, "  Angular range    :     from  %9.4f   to  %9.4f\n", first(t.Qexp), last(t.Qexp))
	fmt.Fprintf(out, "  Real space range :     from      0.00   to  %9.2f\n", t.Dmax)
	fmt.Fprintf(out, "  Reciprocal space: Rg = %9.3f   , I(0) = %12.4E\n\n", t.Rg, t.I0)
	fmt.Fprintf(out, "      S          J EXP       ERROR       J REG       I REG\n\n")
	for k := range t.Qexp {
		fit := 0.0
		if k < len(t.Fit) {
			fit = t.Fit[k]
		}
		fmt.Fprintf(out, " %12.6E %12.6E %12.6E %12.6E %12.6E\n", t.Qexp[k], t.Iexp[k], t.Errexp[k], fit, fit)
	}
	fmt.Fprintf(out, "\n           Distance distribution  function of particle\n\n")
	fmt.Fprintf(out, "       R          P(R)      ERROR\n\n")
	for k := range t.R {
		errp := 0.0
		if k < len(t.ErrP) {
			errp = t.ErrP[k]
		}
		if _, err := fmt.Fprintf(out, " %12.4E %12.4E %12.4E\n", t.R[k], t.P[k], errp); err != nil {
			return CError{err.Error(), []string{"fmt.Fprintf", "OutWrite"}}
		}
	}
	fmt.Fprintf(out, "          Reciprocal space: Rg = %9.3f   , I(0) = %12.4E\n", t.Rg, t.I0)
	fmt.Fprintf(out, "     Real space: Rg = %9.3f +- 0.000  I(0) = %12.4E +- 0.000\n", t.Rg, t.I0)
	return nil
}

// OutFileWrite writes an IFT to a GNOM-style .out file.
func OutFileWrite(name string, t *IFT) error {
	f, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "OutFileWrite"}}
	}
	defer f.Close()
	return OutWrite(f, t)
}

// OutRead reads back a GNOM-style .out file written by OutWrite (or by GNOM
// itself, as long as the standard section markers are present). Only the
// data/fit block and the distance distribution are recovered.
func OutRead(in io.Reader, name string) (*IFT, error) {
	buf := bufio.NewReader(in)
	t := new(IFT)
	t.Name = name
	t.Algorithm = "GNOM"
	const (
		skipping = iota
		expblock
		prblock
	)
	state := skipping
	for {
		line, rerr := buf.ReadString('\n')
		switch {
		case strings.Contains(line, "J EXP"):
			state = expblock
		case strings.Contains(line, "Distance distribution"):
			state = prblock
		case strings.Contains(line, "Real space: Rg"):
			state = skipping
		default:
			fields := strings.Fields(line)
			vals, ok := floatFields(fields)
			if state == expblock && ok && len(vals) == 5 {
				t.Qexp = append(t.Qexp, vals[0])
				t.Iexp = append(t.Iexp, vals[1])
				t.Errexp = append(t.Errexp, vals[2])
				t.Fit = append(t.Fit, vals[3])
			} else if state == prblock && ok && len(vals) == 3 {
				t.R = append(t.R, vals[0])
				t.P = append(t.P, vals[1])
				t.ErrP = append(t.ErrP, vals[2])
			}
		}
		if rerr != nil {
			break
		}
	}
	if len(t.P) == 0 {
		return nil, cerr("OutRead", "No distance distribution found in %s", name)
	}
	t.Dmax = last(t.R)
	t.RgI0()
	return t, nil
}

// OutFileRead reads a GNOM-style .out file.
func OutFileRead(name string) (*IFT, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "OutFileRead"}}
	}
	defer f.Close()
	t, err2 := OutRead(f, filepath.Base(name))
	if err2 != nil {
		return nil, errDecorate(err2, "OutFileRead")
	}
	return t, nil
}

func floatFields(fields []string) ([]float64, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}

func first(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
