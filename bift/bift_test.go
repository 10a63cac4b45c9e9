/*
 * bift_test.go, part of gosas
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

package bift

import (
	"fmt"
	"math"
	"testing"

	"github.com/qbead/gosas"
	"gonum.org/v1/gonum/floats"
)

func TestTransMatrix(Te *testing.T) {
	q := []float64{0, 0.05, 0.1}
	r := linspace(0, 50, 20)
	T := TransMatrix(q, r)
	rows, cols := T.Dims()
	if rows != 3 || cols != 20 {
		Te.Fatalf("TransMatrix is %dx%d", rows, cols)
	}
	//sinc(0) = 1: the q=0 row and the r=0 column are all ones
	for j := 0; j < cols; j++ {
		if T.At(0, j) != 1 {
			Te.Errorf("T[0,%d] = %v, expected 1", j, T.At(0, j))
		}
	}
	for i := 0; i < rows; i++ {
		if T.At(i, 0) != 1 {
			Te.Errorf("T[%d,0] = %v, expected 1", i, T.At(i, 0))
		}
	}
	//everything else is sin(qr)/qr, bounded by 1 in absolute value
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(T.At(i, j)) > 1 {
				Te.Errorf("T[%d,%d] = %v, out of bounds", i, j, T.At(i, j))
			}
		}
	}
}

func TestSpherePrior(Te *testing.T) {
	P, r := SpherePrior(50, 1.0, 40)
	if len(P) != 50 || len(r) != 50 {
		Te.Fatalf("SpherePrior gave %d and %d points", len(P), len(r))
	}
	if r[0] != 0 || r[len(r)-1] != 40 {
		Te.Errorf("r axis runs from %v to %v", r[0], r[len(r)-1])
	}
	min := floats.Min(P)
	if min <= 0 {
		Te.Errorf("The prior is not strictly positive: min %v", min)
	}
	//the floor is a small fraction of the maximum
	if min > 0.01*floats.Max(P) {
		Te.Errorf("The prior floor %v is too high for max %v", min, floats.Max(P))
	}
}

func TestChiSqExactFit(Te *testing.T) {
	q := linspace(0.01, 0.3, 40)
	r := linspace(0, 40, 30)
	T := TransMatrix(q, r)
	P := make([]float64, len(r))
	for k := range r {
		x := r[k] / 40
		P[k] = r[k] * r[k] * (1 - 1.5*x + 0.5*x*x*x)
	}
	//data computed from the model itself must fit with chi^2 = 0
	iexp := make([]float64, len(q))
	for i := range q {
		for j := range P {
			iexp[i] += T.At(i, j) * P[j]
		}
	}
	sigma := make([]float64, len(q))
	for i := range sigma {
		sigma[i] = 0.01 * iexp[0]
	}
	c, fit := chiSq(iexp, sigma, T, P)
	if c > 1e-12 {
		Te.Errorf("Chi^2 of an exact fit is %v", c)
	}
	for i := range fit {
		if math.Abs(fit[i]-iexp[i]) > 1e-9*math.Abs(iexp[0]) {
			Te.Errorf("Fit point %d differs from the data it was built from", i)
		}
	}
}

// sphereProfile builds a noise-free scattering curve of a solid sphere of
// the given radius, with the analytical form factor.
func sphereProfile(n int, radius, i0 float64) *sas.Profile {
	q := make([]float64, n)
	i := make([]float64, n)
	errs := make([]float64, n)
	for k := 0; k < n; k++ {
		q[k] = 0.008 + 0.004*float64(k)
		qr := q[k] * radius
		f := 3 * (math.Sin(qr) - qr*math.Cos(qr)) / (qr * qr * qr)
		i[k] = i0 * f * f
		errs[k] = math.Max(0.01*i[k], 1e-4*i0)
	}
	p, err := sas.NewProfile(i, q, errs, "sphere.dat")
	if err != nil {
		panic(err.Error())
	}
	return p
}

func TestSingleSolve(Te *testing.T) {
	radius := 20.0
	p := sphereProfile(60, radius, 100)
	t, err := SingleSolve(p, 1e5, 2*radius, 50)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("SingleSolve Rg:", t.Rg, "I0:", t.I0, "Chi^2:", t.ChiSq)
	if t.Len() != 52 {
		Te.Errorf("Expected 52 P(r) points (50 plus the pinned ends), got %d", t.Len())
	}
	if t.P[0] != 0 || t.P[t.Len()-1] != 0 {
		Te.Error("P(r) is not pinned to zero at the ends")
	}
	wantRg := math.Sqrt(3.0/5.0) * radius
	if math.Abs(t.Rg-wantRg) > 0.15*wantRg {
		Te.Errorf("Recovered Rg %v, expected about %v", t.Rg, wantRg)
	}
	if t.ChiSq > 10 {
		Te.Errorf("Reduced chi^2 %v is too high for noise-free data", t.ChiSq)
	}
	//bad parameters are refused
	if _, err := SingleSolve(p, -1, 40, 50); err == nil {
		Te.Error("A negative alpha was accepted")
	}
	if _, err := SingleSolve(nil, 1e5, 40, 50); err == nil {
		Te.Error("A nil profile was accepted")
	}
}

func TestSearch(Te *testing.T) {
	if testing.Short() {
		Te.Skip("grid search skipped in short mode")
	}
	radius := 20.0
	p := sphereProfile(60, radius, 100)
	o := DefaultOptions()
	//a coarser grid than the default, centered on sensible values, keeps
	//the test quick
	o.DmaxMin = 20
	o.DmaxMax = 80
	o.DmaxPoints = 10
	o.AlphaPoints = 10
	var points int
	o.OnStatus = func(s Status) {
		if !s.Fine {
			points++
		}
	}
	t, err := Search(p, o)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("Search Dmax:", t.Dmax, "Rg:", t.Rg, "Chi^2:", t.ChiSq, "evidence:", t.Evidence)
	if points != o.DmaxPoints*o.AlphaPoints {
		Te.Errorf("Expected %d status reports, got %d", o.DmaxPoints*o.AlphaPoints, points)
	}
	if t.Dmax < 2*radius*0.7 || t.Dmax > 2*radius*1.6 {
		Te.Errorf("Recovered Dmax %v, expected around %v", t.Dmax, 2*radius)
	}
	wantRg := math.Sqrt(3.0/5.0) * radius
	if math.Abs(t.Rg-wantRg) > 0.2*wantRg {
		Te.Errorf("Recovered Rg %v, expected about %v", t.Rg, wantRg)
	}
	if t.Algorithm != "BIFT" {
		Te.Errorf("Algorithm tag is %q", t.Algorithm)
	}
}

func TestSearchCancel(Te *testing.T) {
	p := sphereProfile(60, 20, 100)
	o := DefaultOptions()
	o.Cancel = make(chan struct{})
	close(o.Cancel)
	if _, err := Search(p, o); err == nil {
		Te.Error("A canceled search returned no error")
	}
}

//A weak smoothness penalty lets the very first fixed-point update overshoot
//(anti-parallel chi^2 and constraint gradients); the step-halving rescue has
//to engage on that first update too, not only from the second one on.
func TestSeekSolutionRelaxation(Te *testing.T) {
	p := sphereProfile(60, 20, 100)
	n := 30
	r := linspace(0, 40, n)
	T := TransMatrix(p.Q, r)
	prior, _ := SpherePrior(n, p.I[0], 40)
	sys := newSystem(p.I, p.Err, T)
	for _, alpha := range []float64{1, 100, 1e4} {
		P, s := seekSolution(prior, sys, alpha)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			Te.Fatalf("alpha %v: constraint value %v", alpha, s)
		}
		for k, v := range P {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				Te.Fatalf("alpha %v: P[%d] = %v", alpha, k, v)
			}
		}
		c, _ := chiSq(p.I, p.Err, T, P)
		fmt.Println("alpha:", alpha, "chi^2:", c/float64(p.Len()))
		if c/float64(p.Len()) > 10 {
			Te.Errorf("alpha %v: reduced chi^2 %v for noise-free data", alpha, c/float64(p.Len()))
		}
	}
}
