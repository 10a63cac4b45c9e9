/*
 * sasplot.go, part of gosas
 *
 * Copyright 2025 The gosas authors
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

//Package sasplot produces the standard diagnostic figures of a scattering
//analysis: the pair-distance distribution, the fit of a transform against
//the experimental profile, and the per-model NSD of a reconstruction.

package sasplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/qbead/gosas"
	"github.com/qbead/gosas/atsas"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, plotname string) error {
	filename := fmt.Sprintf("%s.png", plotname)
	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}

// PrPlot plots the normalized pair-distance distribution P(r) of a
// transform, writing plotname.png.
func PrPlot(t *sas.IFT, title, plotname string) error {
	if t == nil {
		panic("Given nil transform")
	}
	p := basicPlot(title, "r (A)", "P(r)/I(0)")
	pts := make(plotter.XYs, len(t.R))
	norm := t.I0
	if norm == 0 {
		norm = 1
	}
	for i := range t.R {
		pts[i].X = t.R[i]
		pts[i].Y = t.P[i] / norm
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 255, A: 255}
	p.Add(line)
	return save(p, plotname)
}

// FitPlot plots the experimental profile and the regularized fit of a
// transform on a log intensity scale, writing plotname.png.
func FitPlot(t *sas.IFT, title, plotname string) error {
	if t == nil {
		panic("Given nil transform")
	}
	p := basicPlot(title, "q (1/A)", "log I(q)")
	exp := make(plotter.XYs, 0, len(t.Qexp))
	fit := make(plotter.XYs, 0, len(t.Qexp))
	for i := range t.Qexp {
		if t.Iexp[i] > 0 {
			exp = append(exp, plotter.XY{X: t.Qexp[i], Y: math.Log10(t.Iexp[i])})
		}
		if i < len(t.Fit) && t.Fit[i] > 0 {
			fit = append(fit, plotter.XY{X: t.Qexp[i], Y: math.Log10(t.Fit[i])})
		}
	}
	s, err := plotter.NewScatter(exp)
	if err != nil {
		return err
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	line, err := plotter.NewLine(fit)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 255, A: 255}
	p.Add(s, line)
	p.Legend.Add("experimental", s)
	p.Legend.Add("fit", line)
	return save(p, plotname)
}

// NSDPlot plots the NSD of each model of a reconstruction against the
// rest of the set, marking the excluded models, writing plotname.png.
func NSDPlot(entries []atsas.NSDEntry, title, plotname string) error {
	if entries == nil {
		panic("Given nil entries")
	}
	p := basicPlot(title, "model", "NSD")
	included := make(plotter.XYs, 0, len(entries))
	excluded := make(plotter.XYs, 0)
	for i, e := range entries {
		pt := plotter.XY{X: float64(i + 1), Y: e.NSD}
		if e.Included {
			included = append(included, pt)
		} else {
			excluded = append(excluded, pt)
		}
	}
	s, err := plotter.NewScatter(included)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	p.Add(s)
	p.Legend.Add("included", s)
	if len(excluded) > 0 {
		sx, err := plotter.NewScatter(excluded)
		if err != nil {
			return err
		}
		sx.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		p.Add(sx)
		p.Legend.Add("excluded", sx)
	}
	p.X.Min = 0
	p.X.Max = float64(len(entries) + 1)
	return save(p, plotname)
}
