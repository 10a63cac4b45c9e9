/*
 * search.go, part of gosas.
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

package bift

import (
	"fmt"
	"math"

	"github.com/qbead/gosas"
	"gonum.org/v1/gonum/optimize"
)

// Options control the evidence search. The zero value is not usable, get a
// starting point from DefaultOptions.
type Options struct {
	PrPoints    int     //points in P(r)
	AlphaMin    float64 //bounds of the regularization parameter grid
	AlphaMax    float64
	AlphaPoints int
	DmaxMin     float64 //bounds of the Dmax grid, in Angstrom
	DmaxMax     float64
	DmaxPoints  int

	//OnStatus, if not nil, is called after every evaluated grid point.
	OnStatus func(Status)
	//Closing Cancel aborts the search; Search then returns ErrCanceled.
	Cancel chan struct{}
}

// DefaultOptions returns the grid used by the original BIFT implementation:
// 50 P(r) points, alpha from 10 to 1e10 on 16 log-spaced points, Dmax from
// 10 to 400 on 20 points.
func DefaultOptions() *Options {
	return &Options{
		PrPoints:    50,
		AlphaMin:    10,
		AlphaMax:    1e10,
		AlphaPoints: 16,
		DmaxMin:     10,
		DmaxMax:     400,
		DmaxPoints:  20,
	}
}

// Status reports the progress of the evidence search.
type Status struct {
	Alpha    float64
	Dmax     float64
	Evidence float64
	ChiSq    float64 //reduced
	Point    int
	Total    int
	Fine     bool //true during the simplex refinement
}

// solveAt runs the fixed-point optimization at a single (alpha, dmax) point
// and returns the solution, its evidence and its reduced chi-squared.
func solveAt(iexp, q, sigma []float64, alpha, dmax float64, n int) ([]float64, float64, float64) {
	r := linspace(0, dmax, n)
	T := TransMatrix(q, r)
	prior, _ := SpherePrior(n, iexp[0], dmax)
	sys := newSystem(iexp, sigma, T)
	P, s := seekSolution(prior, sys, alpha)
	c, _ := chiSq(iexp, sigma, T, P)
	evd := evidence(alpha, s, c, sys.B)
	return P, evd, c / float64(len(iexp))
}

// Search runs the full BIFT analysis on the selected q-range of a profile:
// a grid search over (alpha, Dmax) maximizing the evidence, a Nelder-Mead
// refinement of the best point, and a final solve there. It returns the
// resulting transform with Dmax, alpha, Rg, I0, chi-squared and evidence
// filled in.
func Search(p *sas.Profile, o *Options) (*sas.IFT, error) {
	if p == nil {
		return nil, Error{ErrNilProfile, []string{"Search"}}
	}
	if o == nil {
		o = DefaultOptions()
	}
	lo, hi := p.QRange()
	iexp := p.I[lo:hi]
	q := p.Q[lo:hi]
	sigma := p.Err[lo:hi]
	alphaPts := linspace(math.Log(o.AlphaMin), math.Log(o.AlphaMax), o.AlphaPoints)
	dmaxPts := linspace(o.DmaxMin, o.DmaxMax, o.DmaxPoints)

	best := math.Inf(-1)
	alphaFin, dmaxFin := -1.0, -1.0
	total := len(alphaPts) * len(dmaxPts)
	point := 0
	for _, dmax := range dmaxPts {
		for _, lnAlpha := range alphaPts {
			select {
			case <-o.Cancel:
				return nil, Error{ErrCanceled, []string{"Search"}}
			default:
			}
			alpha := math.Exp(lnAlpha)
			_, evd, c := solveAt(iexp, q, sigma, alpha, dmax, o.PrPoints)
			if o.OnStatus != nil {
				o.OnStatus(Status{alpha, dmax, evd, c, point, total, false})
			}
			if evd > best {
				best = evd
				alphaFin = alpha
				dmaxFin = dmax
			}
			point++
		}
	}
	if alphaFin < 0 {
		return nil, Error{ErrNoSolution, []string{"Search"}}
	}
	//simplex refinement around the best grid point
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if x[1] <= 0 {
				return math.Inf(1)
			}
			_, evd, _ := solveAt(iexp, q, sigma, math.Exp(x[0]), x[1], o.PrPoints)
			return -evd
		},
	}
	x0 := []float64{math.Log(alphaFin), dmaxFin}
	res, err := optimize.Minimize(problem, x0, &optimize.Settings{Converger: &optimize.FunctionConverge{
		Absolute:   1e-4,
		Iterations: 100,
	}}, &optimize.NelderMead{})
	if err == nil && res != nil {
		alphaFin = math.Exp(res.X[0])
		dmaxFin = res.X[1]
		if o.OnStatus != nil {
			o.OnStatus(Status{alphaFin, dmaxFin, -res.F, 0, total, total, true})
		}
	} //a failed refinement is not fatal, the grid point stands
	t, err2 := SingleSolve(p, alphaFin, dmaxFin, o.PrPoints)
	if err2 != nil {
		return nil, errDecorate(err2, "Search")
	}
	return t, nil
}

// SingleSolve runs the transform with forced alpha and Dmax values on the
// selected q-range of the profile.
func SingleSolve(p *sas.Profile, alpha, dmax float64, n int) (*sas.IFT, error) {
	if p == nil {
		return nil, Error{ErrNilProfile, []string{"SingleSolve"}}
	}
	if alpha <= 0 || dmax <= 0 || n < 3 {
		return nil, Error{fmt.Sprintf("Bad parameters: alpha %v dmax %v N %d", alpha, dmax, n), []string{"SingleSolve"}}
	}
	lo, hi := p.QRange()
	iexp := p.I[lo:hi]
	q := p.Q[lo:hi]
	sigma := p.Err[lo:hi]
	r := linspace(0, dmax, n)
	T := TransMatrix(q, r)
	prior, _ := SpherePrior(n, iexp[0], dmax)
	sys := newSystem(iexp, sigma, T)
	P, s := seekSolution(prior, sys, alpha)
	c, fit := chiSq(iexp, sigma, T, P)
	evd := evidence(alpha, s, c, sys.B)

	//Pin P(r) to zero at both ends and undo the 4 pi dr factor the
	//optimization carries.
	rFin := linspace(0, dmax, n+2)
	dr := rFin[2] - rFin[1]
	pFin := make([]float64, n+2)
	copy(pFin[1:], P)
	for k := range pFin {
		pFin[k] = pFin[k] / (4 * math.Pi * dr)
	}
	t := new(sas.IFT)
	t.P = pFin
	t.R = rFin
	t.ErrP = make([]float64, len(pFin))
	for k := range t.ErrP {
		t.ErrP[k] = 1
	}
	t.Qexp = append([]float64{}, q...)
	t.Iexp = append([]float64{}, iexp...)
	t.Errexp = append([]float64{}, sigma...)
	t.Fit = fit
	t.Dmax = dmax
	t.Alpha = alpha
	t.ChiSq = c / float64(len(iexp))
	t.Evidence = evd
	t.Algorithm = "BIFT"
	t.Name = p.Filename()
	t.RgI0()
	return t, nil
}

//Errors

// Error is the bift package error type. It implements sas.Error.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string { return err.message }

// Decorate adds the dec string to the decoration slice of the error, and
// returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func errDecorate(err error, caller string) error {
	err2 := err.(sas.Error)
	err2.Decorate(caller)
	return err2
}

const (
	ErrNilProfile = "bift: Nil profile given"
	ErrCanceled   = "bift: Search canceled"
	ErrNoSolution = "bift: No solution found in the search grid"
)
