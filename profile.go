/*
 * profile.go, part of gosas.
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
	"path/filepath"
	"strings"

	"github.com/skelterjohn/go.matrix"
	"gonum.org/v1/gonum/stat"
)

/**Note: Some functions here panic instead of returning errors. Those are
 * "fundamental" functions: if something goes wrong in them the program is
 * way-most likely wrong and should crash. The panics are related to calling
 * on a nil Profile or accessing out-of-bounds points.**/

// Profile is a small-angle scattering measurement: a curve of intensities I
// and their uncertainties Err over the momentum transfer vector Q. Three
// copies of the data are kept: the raw one as it was read, a binned one, and
// the working one exposed through the Q, I and Err fields, which is the
// binned data after scaling, offset and normalization.
type Profile struct {
	Q   []float64
	I   []float64
	Err []float64

	qraw, iraw, erraw  []float64
	qbin, ibin, errbin []float64

	scale   float64
	offset  float64
	norm    float64
	qscale  float64
	binsize int

	qrange [2]int

	params map[string]interface{}
}

// NewProfile makes a Profile from intensity, q and error slices and the name
// of the file the data came from (with no path). The slices are copied. It
// returns an error if any slice is nil or the lengths differ.
func NewProfile(i, q, errs []float64, filename string) (*Profile, error) {
	if i == nil || q == nil || errs == nil {
		return nil, CError{string(ErrNilData), []string{"NewProfile"}}
	}
	if len(i) != len(q) || len(errs) != len(q) {
		return nil, CError{string(ErrLengthMismatch), []string{"NewProfile"}}
	}
	p := new(Profile)
	p.iraw = append([]float64{}, i...)
	p.qraw = append([]float64{}, q...)
	p.erraw = append([]float64{}, errs...)
	p.params = map[string]interface{}{"filename": filename}
	p.params["analysis"] = map[string]interface{}{}
	p.resetWorking()
	return p, nil
}

func (p *Profile) resetWorking() {
	p.ibin = append([]float64{}, p.iraw...)
	p.qbin = append([]float64{}, p.qraw...)
	p.errbin = append([]float64{}, p.erraw...)
	p.I = append([]float64{}, p.iraw...)
	p.Q = append([]float64{}, p.qraw...)
	p.Err = append([]float64{}, p.erraw...)
	p.scale = 1
	p.offset = 0
	p.norm = 1
	p.qscale = 1
	p.binsize = 1
	p.qrange = [2]int{0, len(p.qbin)}
}

// update recomputes the working arrays after a scale, normalization or
// offset change. Errors follow the normalization and the absolute value of
// the scale, but not the offset.
func (p *Profile) update() {
	if len(p.I) != len(p.ibin) {
		p.I = make([]float64, len(p.ibin))
		p.Q = make([]float64, len(p.qbin))
		p.Err = make([]float64, len(p.errbin))
	}
	for k := range p.ibin {
		p.I[k] = ((p.ibin[k] / p.norm) + p.offset) * p.scale
		p.Err[k] = (p.errbin[k] / p.norm) * math.Abs(p.scale)
		p.Q[k] = p.qbin[k] * p.qscale
	}
}

// Len returns the number of points in the working curve.
func (p *Profile) Len() int {
	if p == nil {
		panic("gosas: Attempted to get the length of a nil Profile")
	}
	return len(p.Q)
}

// Scale scales the intensity by a factor from the binned intensity. The
// error bars follow.
func (p *Profile) Scale(factor float64) {
	p.scale = math.Abs(factor)
	p.update()
}

// GetScale returns the current scale factor.
func (p *Profile) GetScale() float64 { return p.scale }

// Offset offsets the intensity by a constant. Only the working intensity is
// affected.
func (p *Profile) Offset(value float64) {
	p.offset = value
	p.update()
}

// GetOffset returns the current offset.
func (p *Profile) GetOffset() float64 { return p.offset }

// Normalize divides the binned intensity by a value. The error bars follow.
func (p *Profile) Normalize(value float64) {
	p.norm = value
	p.update()
}

// ScaleQ scales the q values by a factor (a cheap re-calibration).
func (p *Profile) ScaleQ(factor float64) {
	p.qscale = factor
	p.update()
}

// CalibrateQ recalibrates the q vector from pixels to inverse length via
// q = 4 pi sin(theta)/lambda, where theta is obtained per-point from the
// sample-detector distance and the pixel size.
func (p *Profile) CalibrateQ(sdDistance, pixelSize, wavelength float64) {
	for k := range p.qbin {
		theta := 0.5 * math.Atan((p.qbin[k]*pixelSize)/sdDistance)
		p.qbin[k] = (4 * math.Pi * math.Sin(theta)) / wavelength
	}
	p.update()
}

// Reset returns q, I and err to their raw values and clears all scaling.
func (p *Profile) Reset() {
	p.resetWorking()
}

// SetQRange selects the [lo,hi) index range of the working curve used by the
// set operations (Subtract, Average, Superimpose) and by the indirect
// transform. It returns an error if the range does not fit the curve.
func (p *Profile) SetQRange(lo, hi int) error {
	if lo < 0 || hi > len(p.qbin) || lo >= hi {
		return cerr("SetQRange", "Qrange (%d,%d) is not valid for a q-vector of length %d", lo, hi, len(p.qbin))
	}
	p.qrange = [2]int{lo, hi}
	return nil
}

// QRange returns the currently selected index range.
func (p *Profile) QRange() (int, int) {
	return p.qrange[0], p.qrange[1]
}

// RemoveZingers removes spikes from the binned intensity. A point is a spike
// when it exceeds the mean of the previous window points by more than stds
// standard deviations of that window; it is replaced by the window mean.
func (p *Profile) RemoveZingers(startIdx, window int, stds float64) {
	for k := startIdx + window; k < len(p.ibin); k++ {
		w := p.ibin[k-window : k]
		mean := stat.Mean(w, nil)
		sd := stat.StdDev(w, nil)
		if p.ibin[k] > mean+stds*sd {
			p.ibin[k] = mean
		}
	}
	p.update()
}

// SetBinning rebins the raw curve in blocks of binsize points, between
// startIdx and endIdx (endIdx -1 means the end of the curve; it is lowered
// to fit the bin size if needed). Intensities and q are block-averaged and
// errors combined as the quadrature mean sqrt(sum(err^2)/binsize).
func (p *Profile) SetBinning(binsize, startIdx, endIdx int) {
	p.binsize = binsize
	if endIdx == -1 || endIdx > len(p.iraw) {
		endIdx = len(p.iraw)
	}
	nbins := (endIdx - startIdx) / binsize
	endIdx = startIdx + nbins*binsize
	newi := make([]float64, nbins)
	newq := make([]float64, nbins)
	newerr := make([]float64, nbins)
	for b := 0; b < nbins; b++ {
		first := startIdx + b*binsize
		last := first + binsize
		var si, sq, serr float64
		for k := first; k < last; k++ {
			si += p.iraw[k]
			sq += p.qraw[k]
			serr += p.erraw[k] * p.erraw[k]
		}
		newi[b] = si / float64(binsize)
		newq[b] = sq / float64(binsize)
		newerr[b] = math.Sqrt(serr / float64(binsize))
	}
	p.ibin = append(append([]float64{}, p.iraw[0:startIdx]...), newi...)
	p.qbin = append(append([]float64{}, p.qraw[0:startIdx]...), newq...)
	p.errbin = append(append([]float64{}, p.erraw[0:startIdx]...), newerr...)
	if endIdx < len(p.iraw) {
		p.ibin = append(p.ibin, p.iraw[endIdx:]...)
		p.qbin = append(p.qbin, p.qraw[endIdx:]...)
		p.errbin = append(p.errbin, p.erraw[endIdx:]...)
	}
	p.update()
	p.qrange = [2]int{0, len(p.ibin)}
}

// GetBinning returns the current bin size.
func (p *Profile) GetBinning() int { return p.binsize }

// BinnedQ, BinnedI and BinnedErr return the binned (but not scaled) arrays.
// The returned slices are the internal ones, changes to them affect the
// Profile.
func (p *Profile) BinnedQ() []float64   { return p.qbin }
func (p *Profile) BinnedI() []float64   { return p.ibin }
func (p *Profile) BinnedErr() []float64 { return p.errbin }

// ScaleBinnedI scales the binned intensity and errors in place. It is used
// for absolute-scale normalization, which must survive a later Reset of the
// working scale factors.
func (p *Profile) ScaleBinnedI(factor float64) {
	for k := range p.ibin {
		p.ibin[k] *= factor
		p.errbin[k] *= factor
	}
	p.update()
}

// Parameter returns the parameter stored under key, or nil if absent.
func (p *Profile) Parameter(key string) interface{} {
	return p.params[key]
}

// SetParameter stores a key, value pair in the parameters map.
func (p *Profile) SetParameter(key string, value interface{}) {
	p.params[key] = value
}

// Filename returns the filename parameter, or an empty string.
func (p *Profile) Filename() string {
	if s, ok := p.params["filename"].(string); ok {
		return s
	}
	return ""
}

// AddFilenamePrefix prepends prefix to the filename parameter.
func (p *Profile) AddFilenamePrefix(prefix string) {
	p.params["filename"] = prefix + p.Filename()
}

// AddFilenameSuffix appends suffix to the filename parameter, before the
// extension.
func (p *Profile) AddFilenameSuffix(suffix string) {
	name := p.Filename()
	ext := filepath.Ext(name)
	p.params["filename"] = strings.TrimSuffix(name, ext) + suffix + ext
}

// Copy returns a deep copy of the Profile.
func (p *Profile) Copy() *Profile {
	if p == nil {
		panic("gosas: Attempted to copy a nil Profile")
	}
	n, _ := NewProfile(p.iraw, p.qraw, p.erraw, p.Filename()) //the error can't trigger, the receiver is a valid Profile
	n.ibin = append([]float64{}, p.ibin...)
	n.qbin = append([]float64{}, p.qbin...)
	n.errbin = append([]float64{}, p.errbin...)
	n.scale = p.scale
	n.offset = p.offset
	n.norm = p.norm
	n.qscale = p.qscale
	n.binsize = p.binsize
	n.qrange = p.qrange
	for k, v := range p.params {
		n.params[k] = v
	}
	n.update()
	return n
}

// DenseMatrix returns the working curve as a len x 3 DenseMatrix (q, I, err
// columns), for interoperation with go.matrix-based code.
func (p *Profile) DenseMatrix() *matrix.DenseMatrix {
	data := make([]float64, 0, 3*p.Len())
	for k := 0; k < p.Len(); k++ {
		data = append(data, p.Q[k], p.I[k], p.Err[k])
	}
	return matrix.MakeDenseMatrix(data, p.Len(), 3)
}
