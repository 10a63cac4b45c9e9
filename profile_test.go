/*
 * profile_test.go
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
)

// flatProfile is a constant-intensity curve, handy for checking the
// arithmetic of the manipulations.
func flatProfile(n int, value, errval float64) *Profile {
	i := make([]float64, n)
	q := make([]float64, n)
	errs := make([]float64, n)
	for k := 0; k < n; k++ {
		q[k] = 0.01 * float64(k+1)
		i[k] = value
		errs[k] = errval
	}
	p, err := NewProfile(i, q, errs, "flat.dat")
	if err != nil {
		panic(err.Error())
	}
	return p
}

func TestScaleOffsetNormalize(Te *testing.T) {
	p := flatProfile(50, 10, 0.5)
	p.Scale(2)
	if math.Abs(p.I[0]-20) > 1e-12 || math.Abs(p.Err[0]-1.0) > 1e-12 {
		Te.Errorf("Scale(2) gave I %v err %v", p.I[0], p.Err[0])
	}
	p.Offset(3)
	//the offset is applied before the scale
	if math.Abs(p.I[0]-26) > 1e-12 {
		Te.Errorf("Offset(3) after Scale(2) gave I %v, expected 26", p.I[0])
	}
	if math.Abs(p.Err[0]-1.0) > 1e-12 {
		Te.Errorf("The offset moved the error bars: %v", p.Err[0])
	}
	p.Reset()
	if p.I[0] != 10 || p.GetScale() != 1 || p.GetOffset() != 0 {
		Te.Error("Reset didn't clear the manipulations")
	}
	p.Normalize(10)
	if math.Abs(p.I[0]-1) > 1e-12 || math.Abs(p.Err[0]-0.05) > 1e-12 {
		Te.Errorf("Normalize(10) gave I %v err %v", p.I[0], p.Err[0])
	}
	p.Reset()
	p.ScaleQ(10)
	if math.Abs(p.Q[0]-0.1) > 1e-12 {
		Te.Errorf("ScaleQ(10) gave q %v", p.Q[0])
	}
}

func TestBinning(Te *testing.T) {
	p := flatProfile(40, 8, 0.4)
	p.SetBinning(4, 0, 40)
	if len(p.BinnedI()) != 10 {
		Te.Fatalf("Binning by 4 gave %d points, expected 10", len(p.BinnedI()))
	}
	if math.Abs(p.BinnedI()[0]-8) > 1e-12 {
		Te.Errorf("Binned intensity of a flat curve is %v, expected 8", p.BinnedI()[0])
	}
	//the quadrature mean leaves equal errors unchanged
	if math.Abs(p.BinnedErr()[0]-0.4) > 1e-12 {
		Te.Errorf("Binned error is %v, expected 0.4", p.BinnedErr()[0])
	}
	if p.Len() != 10 {
		Te.Errorf("The working curve didn't follow the binning: %d points", p.Len())
	}
	p.Reset()
	if p.Len() != 40 {
		Te.Error("Reset didn't undo the binning")
	}
}

func TestQRangeAndZingers(Te *testing.T) {
	p := flatProfile(60, 5, 0.25)
	if err := p.SetQRange(10, 50); err != nil {
		Te.Fatal(err)
	}
	lo, hi := p.QRange()
	if lo != 10 || hi != 50 {
		Te.Errorf("QRange is (%d,%d)", lo, hi)
	}
	if err := p.SetQRange(50, 10); err == nil {
		Te.Error("An inverted q-range was accepted")
	}
	//plant a spike and remove it
	z := flatProfile(60, 5, 0.25)
	z.ibin[30] = 500
	z.update()
	z.RemoveZingers(0, 10, 4)
	if z.I[30] > 6 {
		Te.Errorf("The zinger survived: %v", z.I[30])
	}
	if math.Abs(z.I[29]-5) > 1e-12 {
		Te.Error("Zinger removal touched a clean point")
	}
}

func TestSubtractAverage(Te *testing.T) {
	a := flatProfile(30, 10, 0.3)
	b := flatProfile(30, 4, 0.4)
	sub, err := Subtract(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(sub.I[0]-6) > 1e-12 {
		Te.Errorf("Subtraction gave %v, expected 6", sub.I[0])
	}
	if math.Abs(sub.Err[0]-0.5) > 1e-12 {
		Te.Errorf("Subtraction error is %v, expected 0.5 (quadrature)", sub.Err[0])
	}
	avg, err := Average([]*Profile{a, b})
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(avg.I[0]-7) > 1e-12 {
		Te.Errorf("Average gave %v, expected 7", avg.I[0])
	}
	if want := math.Sqrt((0.3*0.3 + 0.4*0.4) / 2); math.Abs(avg.Err[0]-want) > 1e-12 {
		Te.Errorf("Average error is %v, expected %v", avg.Err[0], want)
	}
	if avg.Parameter("avg_filelist") == nil {
		Te.Error("The average lost the list of files averaged")
	}
	//mismatched lengths must be refused
	c := flatProfile(20, 1, 0.1)
	if _, err := Subtract(a, c); err == nil {
		Te.Error("Subtraction of mismatched curves was accepted")
	}
}

func TestSuperimpose(Te *testing.T) {
	n := 50
	i := make([]float64, n)
	q := make([]float64, n)
	errs := make([]float64, n)
	for k := 0; k < n; k++ {
		q[k] = 0.01 * float64(k+1)
		i[k] = math.Exp(-q[k] * q[k] * 70)
		errs[k] = 0.01
	}
	ref, _ := NewProfile(i, q, errs, "ref.dat")
	mov := ref.Copy()
	mov.Scale(3)
	mov.Offset(0.2)
	if err := Superimpose(ref, []*Profile{mov}); err != nil {
		Te.Fatal(err)
	}
	var worst float64
	for k := range ref.I {
		if d := math.Abs(mov.I[k] - ref.I[k]); d > worst {
			worst = d
		}
	}
	fmt.Println("worst residual after superimposing:", worst)
	if worst > 1e-6 {
		Te.Errorf("Superimposing left a residual of %v", worst)
	}
}

func TestOutlierFences(Te *testing.T) {
	data := []float64{0.9, 1.0, 1.1, 1.0, 0.95, 1.05, 1.0, 5.0}
	lo, hi := OutlierFences(data, 1.5)
	fmt.Println("fences:", lo, hi)
	if 5.0 < hi {
		Te.Errorf("The obvious outlier is inside the fences (%v, %v)", lo, hi)
	}
	if 1.0 > hi || 1.0 < lo {
		Te.Error("A central value is outside the fences")
	}
}

func TestDenseMatrix(Te *testing.T) {
	p := flatProfile(12, 3, 0.1)
	p.Scale(2)
	m := p.DenseMatrix()
	if m.Rows() != p.Len() || m.Cols() != 3 {
		Te.Fatalf("DenseMatrix is %dx%d, expected %dx3", m.Rows(), m.Cols(), p.Len())
	}
	for k := 0; k < p.Len(); k++ {
		if m.Get(k, 0) != p.Q[k] || m.Get(k, 1) != p.I[k] || m.Get(k, 2) != p.Err[k] {
			Te.Errorf("Row %d is (%v %v %v), expected (%v %v %v)", k,
				m.Get(k, 0), m.Get(k, 1), m.Get(k, 2), p.Q[k], p.I[k], p.Err[k])
		}
	}
}
