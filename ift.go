/*
 * ift.go, part of gosas.
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
	"math"

	"gonum.org/v1/gonum/integrate"
)

// IFT holds the result of an indirect Fourier transform of a scattering
// profile: the real-space pair-distance distribution P(r), the q-space
// window it was obtained from, the regularized fit to that window, and the
// scalar results of the transform.
type IFT struct {
	P    []float64 //pair-distance distribution
	R    []float64 //the r axis of P
	ErrP []float64

	//the experimental window the transform was run on
	Qexp   []float64
	Iexp   []float64
	Errexp []float64

	//the fit I_m = T P over the experimental window
	Fit []float64

	Dmax     float64
	Alpha    float64
	Rg       float64
	I0       float64
	ChiSq    float64
	Evidence float64

	Name      string
	Algorithm string
}

// RgI0 computes the radius of gyration and forward scattering from P(r) by
// trapezoid integration:
//
//	I0 = 4 pi int P(r) dr    Rg^2 = int r^2 P(r) dr / (2 int P(r) dr)
//
// They are also stored in the corresponding fields.
func (t *IFT) RgI0() (float64, float64) {
	area := integrate.Trapezoidal(t.R, t.P)
	r2p := make([]float64, len(t.P))
	for k := range t.P {
		r2p[k] = t.P[k] * t.R[k] * t.R[k]
	}
	area2 := integrate.Trapezoidal(t.R, r2p)
	t.Rg = math.Sqrt(math.Abs(area2 / (2 * area)))
	t.I0 = area * 4 * math.Pi
	return t.Rg, t.I0
}

// Len returns the number of points in P(r).
func (t *IFT) Len() int {
	return len(t.P)
}
