/*
 * bift.go, part of gosas.
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

package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qbead/gosas"
	"github.com/qbead/gosas/bift"
	"github.com/qbead/gosas/sasplot"
	"github.com/spf13/cobra"
)

var (
	biftOut   string
	biftPlots bool
	biftQmin  float64
	biftQmax  float64
)

var biftCmd = &cobra.Command{
	Use:   "bift profile.dat",
	Short: "Compute a P(r) distribution from a scattering profile.",
	Long: `bift reads a three-column scattering profile (q, I, sigma; plain,
gzip or zstd compressed) and computes its pair-distance distribution with
a Bayesian indirect Fourier transform, searching over the regularization
parameter and the maximum dimension. The result is written as a GNOM-style
.out file, ready for the reconstruct command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := sas.DatFileRead(args[0])
		if err != nil {
			return err
		}
		if biftQmin > 0 || biftQmax > 0 {
			if err := clampQ(prof, biftQmin, biftQmax); err != nil {
				return err
			}
		}
		opts := bift.DefaultOptions()
		opts.OnStatus = func(s bift.Status) {
			if s.Fine {
				return
			}
			fmt.Printf("\rgrid point %d/%d", s.Point+1, s.Total)
		}
		t, err := bift.Search(prof, opts)
		if err != nil {
			return err
		}
		fmt.Printf("\nDmax: %.1f  Rg: %.2f  I(0): %.4g  Chi^2: %.3f  log alpha: %.2f\n",
			t.Dmax, t.Rg, t.I0, t.ChiSq, logAlpha(t.Alpha))
		out := biftOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".out"
		}
		if err := sas.OutFileWrite(out, t); err != nil {
			return err
		}
		fmt.Println("wrote", out)
		if biftPlots {
			base := strings.TrimSuffix(out, filepath.Ext(out))
			if err := sasplot.PrPlot(t, "P(r)", base+"_pr"); err != nil {
				return err
			}
			if err := sasplot.FitPlot(t, "Fit", base+"_fit"); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	biftCmd.Flags().StringVarP(&biftOut, "output", "o", "", "output .out file (default: input with .out extension)")
	biftCmd.Flags().BoolVar(&biftPlots, "plots", false, "also write P(r) and fit plots as png")
	biftCmd.Flags().Float64Var(&biftQmin, "qmin", 0, "truncate the profile below this q")
	biftCmd.Flags().Float64Var(&biftQmax, "qmax", 0, "truncate the profile above this q")
}

// clampQ restricts the working q-range of a profile to [qmin, qmax].
// Either bound can be 0 to leave that end alone.
func clampQ(p *sas.Profile, qmin, qmax float64) error {
	lo, hi := 0, p.Len()-1
	for i := 0; i < p.Len(); i++ {
		if qmin > 0 && p.Q[i] < qmin {
			lo = i + 1
		}
		if qmax > 0 && p.Q[i] <= qmax {
			hi = i
		}
	}
	return p.SetQRange(lo, hi+1)
}

func logAlpha(alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	return math.Log10(alpha)
}
