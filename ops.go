/*
 * ops.go, part of gosas.
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

//Operations on sets of profiles: subtraction, averaging and superimposition.

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Subtract subtracts b from a over their selected q-ranges and propagates
// the errors in quadrature. The q vector of the result is taken from a. It
// returns an error if the selected ranges differ in length.
func Subtract(a, b *Profile) (*Profile, error) {
	alo, ahi := a.QRange()
	blo, bhi := b.QRange()
	if ahi-alo != bhi-blo {
		return nil, cerr("Subtract", "The curves don't have the same number of points: %d, %d", ahi-alo, bhi-blo)
	}
	n := ahi - alo
	i := make([]float64, n)
	q := make([]float64, n)
	errs := make([]float64, n)
	for k := 0; k < n; k++ {
		i[k] = a.I[alo+k] - b.I[blo+k]
		q[k] = a.Q[alo+k]
		errs[k] = math.Sqrt(a.Err[alo+k]*a.Err[alo+k] + b.Err[blo+k]*b.Err[blo+k])
	}
	sub, err := NewProfile(i, q, errs, a.Filename())
	if err != nil {
		return nil, errDecorate(err, "Subtract")
	}
	for k, v := range a.params {
		sub.params[k] = v
	}
	return sub, nil
}

// Average averages the intensity of a list of profiles over their selected
// q-ranges. The error of the average is sqrt(sum(err^2)/n). It returns an
// error on a nil/empty list or mismatched lengths.
func Average(profiles []*Profile) (*Profile, error) {
	if len(profiles) == 0 {
		return nil, CError{string(ErrNilData), []string{"Average"}}
	}
	flo, fhi := profiles[0].QRange()
	n := fhi - flo
	for _, p := range profiles {
		lo, hi := p.QRange()
		if hi-lo != n {
			return nil, cerr("Average", "Average list contains curves with different number of points")
		}
	}
	avgi := make([]float64, n)
	avgerr := make([]float64, n)
	files := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lo, _ := p.QRange()
		for k := 0; k < n; k++ {
			avgi[k] += p.I[lo+k]
			avgerr[k] += p.Err[lo+k] * p.Err[lo+k]
		}
		files = append(files, p.Filename())
	}
	fn := float64(len(profiles))
	for k := 0; k < n; k++ {
		avgi[k] /= fn
		avgerr[k] = math.Sqrt(avgerr[k] / fn)
	}
	q := append([]float64{}, profiles[0].Q[flo:fhi]...)
	avg, err := NewProfile(avgi, q, avgerr, profiles[0].Filename())
	if err != nil {
		return nil, errDecorate(err, "Average")
	}
	avg.SetParameter("avg_filelist", files)
	return avg, nil
}

// Superimpose finds, for each profile in the list, the scale and offset that
// best match it onto the reference in the least-squares sense: it minimizes
// ||(I - alf) - bet*I_ref||^2 after resampling the profile on the common q
// interval, then applies scale 1/bet and offset -alf to the profile. The
// curves need not be sampled at the same q points.
func Superimpose(ref *Profile, profiles []*Profile) error {
	if ref == nil || profiles == nil {
		return CError{string(ErrNilData), []string{"Superimpose"}}
	}
	qstar := ref.Q
	istar := ref.I
	for _, p := range profiles {
		q := p.BinnedQ()
		i := p.BinnedI()
		//the common q interval, as indices on the reference q vector
		minidx := sort.SearchFloat64s(qstar, q[0])
		maxidx := sort.Search(len(qstar), func(k int) bool { return qstar[k] > q[len(q)-1] })
		if minidx >= maxidx {
			return cerr("Superimpose", "Profile %s shares no q range with the reference", p.Filename())
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(q, i); err != nil {
			return CError{err.Error(), []string{"interp.PiecewiseLinear.Fit", "Superimpose"}}
		}
		resamp := make([]float64, maxidx-minidx)
		for k := range resamp {
			resamp[k] = pl.Predict(qstar[minidx+k])
		}
		sview := istar[minidx:maxidx]
		ones := make([]float64, len(resamp))
		for k := range ones {
			ones[k] = 1
		}
		g2 := floats.Dot(ones, ones)
		s2 := floats.Dot(sview, sview)
		gs := floats.Dot(ones, sview)
		fg := floats.Dot(resamp, ones)
		fs := floats.Dot(resamp, sview)
		determ := g2*s2 - gs*gs
		if determ == 0 {
			return cerr("Superimpose", "Singular system for profile %s", p.Filename())
		}
		alf := (fg*s2 - fs*gs) / determ
		bet := (g2*fs - gs*fg) / determ
		p.Scale(1.0 / bet)
		p.Offset(-alf)
	}
	return nil
}

// OutlierFences returns the lower and upper borders for outliers in data,
// using interquartile-range fences with the given sensitivity.
func OutlierFences(data []float64, sensitivity float64) (float64, float64) {
	n := len(data)
	sorted := append([]float64{}, data...)
	sort.Float64s(sorted)
	p25 := sorted[int(math.Round(0.25*float64(n)))]
	p75 := sorted[int(math.Round(0.75*float64(n-1)))]
	iqr := p75 - p25
	return p25 - sensitivity*iqr, p75 + sensitivity*iqr
}

// AbsScaleWaterConst computes the absolute-scale constant from a water and
// an empty-cell measurement and the theoretical water I(0). The flat middle
// third of the background-subtracted water curve is averaged for it.
func AbsScaleWaterConst(water, empty *Profile, i0Water float64) (float64, error) {
	if water == nil || empty == nil {
		return 0, cerr("AbsScaleWaterConst", "Empty cell or water profile missing")
	}
	sub, err := Subtract(water, empty)
	if err != nil {
		return 0, errDecorate(err, "AbsScaleWaterConst")
	}
	start := int(float64(len(sub.I)) * 0.333)
	end := int(float64(len(sub.I)) * 0.666)
	avg := floats.Sum(sub.I[start:end]) / float64(end-start)
	return i0Water / avg, nil
}
