/*
 * sasplot_test.go, part of gosas
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
 *
 */

package sasplot

import (
	"math"
	"os"
	"testing"

	"github.com/qbead/gosas"
	"github.com/qbead/gosas/atsas"
)

func testIFT() *sas.IFT {
	t := new(sas.IFT)
	dmax := 40.0
	for k := 0; k < 50; k++ {
		r := dmax * float64(k) / 49.0
		x := r / dmax
		t.R = append(t.R, r)
		t.P = append(t.P, r*r*(1-1.5*x+0.5*x*x*x))
	}
	for k := 0; k < 40; k++ {
		q := 0.01 + 0.005*float64(k)
		i := math.Exp(-q * q * 80)
		t.Qexp = append(t.Qexp, q)
		t.Iexp = append(t.Iexp, i)
		t.Errexp = append(t.Errexp, 0.01*i)
		t.Fit = append(t.Fit, i*1.01)
	}
	t.Dmax = dmax
	t.RgI0()
	return t
}

func TestPlots(Te *testing.T) {
	if err := os.MkdirAll("test", 0755); err != nil {
		Te.Fatal(err)
	}
	t := testIFT()
	if err := PrPlot(t, "P(r)", "test/pr"); err != nil {
		Te.Error(err)
	}
	if err := FitPlot(t, "Fit", "test/fit"); err != nil {
		Te.Error(err)
	}
	entries := []atsas.NSDEntry{
		{File: "m_01-1.cif", NSD: 0.51, Included: true},
		{File: "m_02-1.cif", NSD: 0.49, Included: true},
		{File: "m_03-1.cif", NSD: 0.89, Included: false},
	}
	if err := NSDPlot(entries, "NSD", "test/nsd"); err != nil {
		Te.Error(err)
	}
	for _, f := range []string{"test/pr.png", "test/fit.png", "test/nsd.png"} {
		if _, err := os.Stat(f); err != nil {
			Te.Errorf("The plot %s was not written", f)
		}
	}
}

//A transform straight out of a file can carry data but no fit.
func TestFitPlotShortFit(Te *testing.T) {
	if err := os.MkdirAll("test", 0755); err != nil {
		Te.Fatal(err)
	}
	t := testIFT()
	t.Fit = t.Fit[:5]
	if err := FitPlot(t, "Fit", "test/fit_partial"); err != nil {
		Te.Error(err)
	}
	t.Fit = nil
	if err := FitPlot(t, "Fit", "test/fit_nofit"); err != nil {
		Te.Error(err)
	}
	if _, err := os.Stat("test/fit_partial.png"); err != nil {
		Te.Error("The partial-fit plot was not written")
	}
}
