/*
 * model_test.go
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

package sas

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// sphereModel puts beads on a regular grid inside a sphere of the given
// radius. Deterministic, so the tests always see the same model.
func sphereModel(gridside int, radius float64) *Model {
	var coords []float64
	step := 2 * radius / float64(gridside)
	for i := 0; i < gridside; i++ {
		for j := 0; j < gridside; j++ {
			for k := 0; k < gridside; k++ {
				x := -radius + step*(float64(i)+0.5)
				y := -radius + step*(float64(j)+0.5)
				z := -radius + step*(float64(k)+0.5)
				if x*x+y*y+z*z <= radius*radius {
					coords = append(coords, x, y, z)
				}
			}
		}
	}
	m := new(Model)
	m.XYZ = mat.NewDense(len(coords)/3, 3, coords)
	m.Name = "sphere"
	m.Radius = DefaultBeadRadius
	return m
}

func TestModelGeometry(Te *testing.T) {
	radius := 15.0
	m := sphereModel(12, radius)
	fmt.Println("sphere model with", m.Len(), "beads")
	c := m.Center()
	for j := 0; j < 3; j++ {
		if math.Abs(c[j]) > 0.5 {
			Te.Errorf("Sphere model center component %d is %v, expected ~0", j, c[j])
		}
	}
	rg := m.Rg()
	want := math.Sqrt(3.0/5.0) * radius
	fmt.Println("model Rg:", rg, "expected about:", want)
	//a discrete bead filling won't hit the continuum value exactly
	if math.Abs(rg-want) > 0.1*want {
		Te.Errorf("Sphere model Rg %v, expected about %v", rg, want)
	}
	dmax := m.Dmax()
	if dmax < 2*radius-2 || dmax > 2*radius+2*m.Radius+1 {
		Te.Errorf("Sphere model Dmax %v, expected about %v", dmax, 2*radius)
	}
}

func TestNSD(Te *testing.T) {
	a := sphereModel(10, 15.0)
	b := a.Copy()
	nsd, err := NSD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("NSD of a model with itself:", nsd)
	if nsd > 1e-8 {
		Te.Errorf("NSD of a model with itself is %v, expected 0", nsd)
	}
	//shift one copy by much less than the bead spacing: NSD stays small
	for k := 0; k < b.Len(); k++ {
		b.XYZ.Set(k, 0, b.XYZ.At(k, 0)+0.3)
	}
	small, err := NSD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	//a clearly different model: same grid, twice the radius
	c := sphereModel(10, 30.0)
	large, err := NSD(a, c)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("NSD shifted:", small, "different size:", large)
	if small >= large {
		Te.Errorf("NSD should grow with dissimilarity: shifted %v, resized %v", small, large)
	}
	if large < 0.5 {
		Te.Errorf("NSD between clearly different models is %v, expected > 0.5", large)
	}
}
