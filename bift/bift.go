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

package bift

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TransMatrix builds the transformation matrix T relating a distance
// distribution to reciprocal space, I_m = T p, with
// T[i,j] = sin(q_i r_j)/(q_i r_j) and 1 where q r = 0. The 4 pi dr factor
// is left out, so the solution carries it until the final rescaling.
func TransMatrix(q, r []float64) *mat.Dense {
	T := mat.NewDense(len(q), len(r), nil)
	for i := range q {
		for j := range r {
			qr := q[i] * r[j]
			if qr == 0 {
				T.Set(i, j, 1)
				continue
			}
			chk := math.Sin(qr) / qr
			if math.IsNaN(chk) {
				chk = 1
			}
			T.Set(i, j, chk)
		}
	}
	return T
}

// SpherePrior returns the P(r) of a solid sphere of diameter dmax, sampled
// on n points, scaled to the forward intensity scale, together with the r
// axis. Values below a small fraction of the maximum are floored and the
// curve renormalized, so the prior is strictly positive.
func SpherePrior(n int, scale, dmax float64) ([]float64, []float64) {
	r := linspace(0, dmax, n)
	deltaR := r[1]
	pmin := 0.005
	psum := math.Pow(dmax, 3) / 24
	norm := scale / psum * deltaR
	P := make([]float64, n)
	for k := range r {
		x := r[k] / dmax
		P[k] = r[k] * r[k] * (1 - 1.5*x + 0.5*x*x*x) * norm
	}
	sum1 := floats.Sum(P)
	avm := pmin * floats.Max(P)
	for k := range P {
		if P[k] <= avm {
			P[k] = avm
		}
	}
	sum2 := floats.Sum(P)
	floats.Scale(sum1/sum2, P)
	return P, r
}

// system holds the precomputed quadratic-form pieces of the optimization:
// B = T' W T with W = diag(1/sigma^2), its diagonal, the off-diagonal rest,
// and sumDia[k] = sum_i T[i,k] I_i / sigma_i^2.
type system struct {
	B      *mat.Dense
	Bmat   *mat.Dense //B with a zeroed diagonal
	bkk    []float64
	sumDia []float64
}

func newSystem(iexp, sigma []float64, T *mat.Dense) *system {
	rows, n := T.Dims()
	s := new(system)
	s.B = mat.NewDense(n, n, nil)
	s.Bmat = mat.NewDense(n, n, nil)
	s.bkk = make([]float64, n)
	s.sumDia = make([]float64, n)
	w := make([]float64, rows)
	for i := range w {
		w[i] = 1 / (sigma[i] * sigma[i])
	}
	for k := 0; k < n; k++ {
		for j := k; j < n; j++ {
			var sum float64
			for i := 0; i < rows; i++ {
				sum += T.At(i, k) * T.At(i, j) * w[i]
			}
			s.B.Set(k, j, sum)
			s.B.Set(j, k, sum)
		}
		var sd float64
		for i := 0; i < rows; i++ {
			sd += T.At(i, k) * iexp[i] * w[i]
		}
		s.sumDia[k] = sd
		s.bkk[k] = s.B.At(k, k)
	}
	s.Bmat.Copy(s.B)
	for k := 0; k < n; k++ {
		s.Bmat.Set(k, k, 0)
	}
	return s
}

//Constants of the fixed-point iteration. They come straight from the
//original BIFT formulation and there has been no reason to touch them.
const (
	omegaStart     = 0.5
	omegaMin       = 0.001
	omegaReduction = 2.0
	minIter        = 10
	maxIter        = 1000
	dotspTol       = 0.001
)

// seekSolution runs the relaxed fixed-point iteration that maximizes
// alpha*s - chi^2/2 for a fixed alpha, starting from the prior. It returns
// the solution P and the smoothness constraint s at the solution. The
// iteration stops when the chi^2 and constraint gradients are parallel
// (dotsp close to 1), or on the iteration cap.
func seekSolution(prior []float64, sys *system, alpha float64) ([]float64, float64) {
	n := len(prior)
	m := append([]float64{}, prior...)
	P := append([]float64{}, prior...)
	Pold := make([]float64, n)
	dP := make([]float64, n)
	psumi := make([]float64, n)
	omega := omegaStart
	bkkmax := floats.Max(sys.bkk) * 10
	var s, dotsp float64

	grads := func() (dotsp, s float64) {
		var wgrads, wgradc float64
		for k := 0; k < n; k++ {
			d := P[k] - m[k]
			s -= d * d
			gradsi := -2 * d
			wgrads += gradsi * gradsi
			var gradci float64
			for j := 0; j < n; j++ {
				gradci += 2 * P[j] * sys.B.At(j, k)
			}
			gradci -= 2 * sys.sumDia[k]
			wgradc += gradci * gradci
			dotsp += gradci * gradsi
		}
		if wgrads == 0 || wgradc == 0 {
			return 1, s
		}
		return dotsp / (math.Sqrt(wgrads) * math.Sqrt(wgradc)), s
	}

	for ite := 0; (ite < maxIter && omega > omegaMin && math.Abs(1-dotsp) > dotspTol) || ite < minIter; ite++ {
		if ite != 0 {
			//smoothness vector m
			for k := 1; k < n-1; k++ {
				m[k] = (P[k-1] + P[k+1]) / 2.0
			}
			m[0] = P[1] / 2.0
			m[n-1] = P[n-2] / 2.0
			for j := 0; j < n; j++ {
				var sum float64
				for k := 0; k < n; k++ {
					sum += P[k] * sys.Bmat.At(k, j)
				}
				psumi[j] = sum
			}
			for k := 0; k < n; k++ {
				dP[k] = (m[k]*alpha + sys.sumDia[k] - psumi[k]) / (sys.bkk[k] + alpha)
				Pold[k] = P[k]
				P[k] = (1-omega)*P[k] + omega*dP[k]
			}
		}
		dotsp, s = grads()
		//reduce the search step when it overshoots
		for dotsp < 0 && alpha < bkkmax && ite >= 1 && omega > omegaMin {
			omega = omega / omegaReduction
			for k := 0; k < n; k++ {
				P[k] = (1-omega)*Pold[k] + omega*dP[k]
			}
			dotsp, s = grads()
		}
	}
	return P, s
}

// chiSq returns the chi-squared of the fit T P against the data, and the
// fit itself.
func chiSq(iexp, sigma []float64, T *mat.Dense, P []float64) (float64, []float64) {
	rows, _ := T.Dims()
	fit := make([]float64, rows)
	var c float64
	for i := 0; i < rows; i++ {
		var sum float64
		for j := range P {
			sum += T.At(i, j) * P[j]
		}
		fit[i] = sum
		d := iexp[i] - sum
		c += (d * d) / (sigma[i] * sigma[i])
	}
	return c, fit
}

// evidence computes the log posterior evidence of a solution per the
// Hansen formulation: 0.5 log det A + alpha s - chi^2/2 - 0.5 log det
// (B/alpha + A) + log alpha, where A is the (constant) tridiagonal hessian
// of the smoothness constraint. Returns -Inf for a non-positive
// determinant.
func evidence(alpha, s, chi float64, B *mat.Dense) float64 {
	n, _ := B.Dims()
	detM := mat.NewDense(n, n, nil)
	detM.Scale(1/alpha, B)
	for k := 0; k < n; k++ {
		detM.Set(k, k, detM.At(k, k)+1)
		if k > 0 {
			detM.Set(k, k-1, detM.At(k, k-1)-0.5)
		}
		if k < n-1 {
			detM.Set(k, k+1, detM.At(k, k+1)-0.5)
		}
	}
	ld, sign := mat.LogDet(detM)
	if sign <= 0 {
		return math.Inf(-1)
	}
	logdetA := math.Log(float64(n+1)) - math.Log(2)*float64(n)
	q := alpha*s - 0.5*chi
	return 0.5*logdetA + q - 0.5*ld + math.Log(alpha)
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for k := range out {
		out[k] = lo + float64(k)*step
	}
	return out
}
