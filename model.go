/*
 * model.go, part of gosas.
 *
 * Copyright 2024 The gosas authors
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

	"gonum.org/v1/gonum/mat"
)

// DefaultBeadRadius is the dummy-atom radius assumed when a model file does
// not state one, in Angstrom.
const DefaultBeadRadius = 1.9

// Model is a dummy-atom (bead) model: n beads with cartesian coordinates in
// an n x 3 matrix, plus the per-bead occupancies and b-factors some programs
// write (damfilt encodes bead frequency in them).
type Model struct {
	XYZ       *mat.Dense
	Occupancy []float64
	Bfactors  []float64
	Name      string
	Radius    float64
}

// Len returns the number of beads in the model.
func (M *Model) Len() int {
	if M == nil || M.XYZ == nil {
		panic("gosas: Attempted to get the length of a nil Model")
	}
	r, _ := M.XYZ.Dims()
	return r
}

// Copy returns a deep copy of the model.
func (M *Model) Copy() *Model {
	N := new(Model)
	N.XYZ = mat.DenseCopyOf(M.XYZ)
	N.Occupancy = append([]float64{}, M.Occupancy...)
	N.Bfactors = append([]float64{}, M.Bfactors...)
	N.Name = M.Name
	N.Radius = M.Radius
	return N
}

// Center returns the geometric center of the model.
func (M *Model) Center() [3]float64 {
	var c [3]float64
	n := M.Len()
	for k := 0; k < n; k++ {
		c[0] += M.XYZ.At(k, 0)
		c[1] += M.XYZ.At(k, 1)
		c[2] += M.XYZ.At(k, 2)
	}
	c[0] /= float64(n)
	c[1] /= float64(n)
	c[2] /= float64(n)
	return c
}

// Rg returns the radius of gyration of the beads, all beads weighted
// equally.
func (M *Model) Rg() float64 {
	c := M.Center()
	var sum float64
	n := M.Len()
	for k := 0; k < n; k++ {
		dx := M.XYZ.At(k, 0) - c[0]
		dy := M.XYZ.At(k, 1) - c[1]
		dz := M.XYZ.At(k, 2) - c[2]
		sum += dx*dx + dy*dy + dz*dz
	}
	return math.Sqrt(sum / float64(n))
}

// Dmax returns the maximum distance between any two beads plus one bead
// diameter.
func (M *Model) Dmax() float64 {
	var max float64
	n := M.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := dist2(M, i, M, j); d > max {
				max = d
			}
		}
	}
	return math.Sqrt(max) + 2*M.Radius
}

// Volume returns the total volume of the beads, with no correction for
// overlap.
func (M *Model) Volume() float64 {
	return float64(M.Len()) * (4.0 / 3.0) * math.Pi * math.Pow(M.Radius, 3)
}

func dist2(a *Model, i int, b *Model, j int) float64 {
	dx := a.XYZ.At(i, 0) - b.XYZ.At(j, 0)
	dy := a.XYZ.At(i, 1) - b.XYZ.At(j, 1)
	dz := a.XYZ.At(i, 2) - b.XYZ.At(j, 2)
	return dx*dx + dy*dy + dz*dz
}

// minDist2 returns the squared distance from bead i of a to the closest
// bead of b.
func minDist2(a *Model, i int, b *Model) float64 {
	min := math.Inf(1)
	for j := 0; j < b.Len(); j++ {
		if d := dist2(a, i, b, j); d < min {
			min = d
		}
	}
	return min
}

// nnDist2 returns the mean squared nearest-neighbor distance within a model.
func nnDist2(a *Model) float64 {
	var sum float64
	n := a.Len()
	for i := 0; i < n; i++ {
		min := math.Inf(1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if d := dist2(a, i, a, j); d < min {
				min = d
			}
		}
		sum += min
	}
	return sum / float64(n)
}

// NSD returns the normalized spatial discrepancy between two bead models,
// the similarity metric used by DAMAVER. 0 means identical models; values
// under about 1 mean good agreement. The normalization distances are the
// mean nearest-neighbor distances within each model.
func NSD(a, b *Model) (float64, error) {
	if a == nil || b == nil {
		return 0, CError{string(ErrNilData), []string{"NSD"}}
	}
	if a.Len() < 2 || b.Len() < 2 {
		return 0, cerr("NSD", "Models too small: %d, %d beads", a.Len(), b.Len())
	}
	da2 := nnDist2(a)
	db2 := nnDist2(b)
	var sab, sba float64
	for i := 0; i < a.Len(); i++ {
		sab += minDist2(a, i, b)
	}
	for j := 0; j < b.Len(); j++ {
		sba += minDist2(b, j, a)
	}
	nsd2 := 0.5 * (sab/(float64(a.Len())*db2) + sba/(float64(b.Len())*da2))
	return math.Sqrt(nsd2), nil
}
