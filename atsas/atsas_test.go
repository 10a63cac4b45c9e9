/*
 * atsas_test.go, part of gosas
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

//The tests here never run the ATSAS programs themselves: they exercise the
//input assembly and the parsing of canned output files in the test
//directory, so they work on machines without ATSAS installed.

package atsas

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
)

func readAll(name string) (string, error) {
	b, err := os.ReadFile(name)
	return string(b), err
}

func TestDammifOptions(Te *testing.T) {
	h := NewDammifHandle()
	h.SetName("test/lys_01")
	par := new(Params)
	par.SetDefaults()
	par.Symmetry = "P2"
	par.Seed = 42
	//the transform file must exist, any readable file will do
	if err := h.BuildInput("test/lys_01.log", par); err != nil {
		Te.Fatal(err)
	}
	opts := strings.Join(h.options, " ")
	fmt.Println("dammif options:", opts)
	for _, want := range []string{"--prefix=test/lys_01", "--mode=fast", "--symmetry=P2", "--seed=42"} {
		if !strings.Contains(opts, want) {
			Te.Errorf("Options are missing %q: %s", want, opts)
		}
	}
	if strings.Contains(opts, "--anisometry") {
		Te.Error("An anisometry option appeared out of nowhere")
	}
	//a missing input file must be refused
	if err := h.BuildInput("test/no_such_file.out", par); err == nil {
		Te.Error("A missing input file was accepted")
	}
}

func TestDammifStats(Te *testing.T) {
	h := NewDammifHandle()
	h.SetName("test/lys_01")
	st, err := h.Stats()
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("dammif stats:", *st)
	if math.Abs(st.ChiSq-1.052) > 1e-9 {
		Te.Errorf("Chi^2 is %v, expected 1.052", st.ChiSq)
	}
	if math.Abs(st.Rg-15.30) > 1e-9 {
		Te.Errorf("Rg is %v, expected 15.30", st.Rg)
	}
	if math.Abs(st.Dmax-48.0) > 1e-9 {
		Te.Errorf("Dmax is %v, expected 48.0", st.Dmax)
	}
	if math.Abs(st.ExcludedVolume-25100) > 1e-9 {
		Te.Errorf("Excluded volume is %v, expected 25100", st.ExcludedVolume)
	}
	if math.Abs(st.MWEstimate-15800) > 1e-9 {
		Te.Errorf("MW estimate is %v, expected 15800", st.MWEstimate)
	}
}

func TestDammifModel(Te *testing.T) {
	h := NewDammifHandle()
	h.SetName("test/lys_01")
	if h.ModelFile() != "test/lys_01-1.cif" {
		Te.Errorf("Model file is %q", h.ModelFile())
	}
	model, err := h.Model()
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("model read:", model.Len(), "beads, Rg", model.Rg())
	if model.Len() != 40 {
		Te.Errorf("Expected 40 beads, got %d", model.Len())
	}
}

//TestDamminStats checks that the missing diameter line of newer DAMMIN
//versions comes back as NaN rather than as an error.
func TestDamminStats(Te *testing.T) {
	h := NewDamminHandle()
	h.SetName("test/refine_lys")
	h.SetVersion(Version{3, 2, 1})
	st, err := h.Stats()
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("dammin stats:", *st)
	if math.Abs(st.ChiSq-0.987) > 1e-9 {
		Te.Errorf("Chi^2 is %v, expected 0.987", st.ChiSq)
	}
	if !math.IsNaN(st.Dmax) {
		Te.Errorf("Dmax is %v, expected NaN when the log doesn't report it", st.Dmax)
	}
	//an old DAMMIN was expected to report the diameter, so its absence is
	//an error there
	old := NewDamminHandle()
	old.SetName("test/refine_lys")
	old.SetVersion(Version{3, 0, 3})
	if _, err := old.Stats(); err == nil {
		Te.Error("A missing Dmax was tolerated on a pre-3.1.0 version")
	}
}

func TestDamminRefinementInput(Te *testing.T) {
	h := NewDamminHandle()
	h.SetName("refine_lys")
	h.SetInitial("test/lys_01-1.cif")
	if err := h.BuildInput("test/lys_01.log", nil); err != nil {
		Te.Fatal(err)
	}
	opts := strings.Join(h.options, " ")
	if !strings.Contains(opts, "--initial=test/lys_01-1.cif") {
		Te.Errorf("The damstart file is missing from the options: %s", opts)
	}
	if h.ModelFile() != "refine_lys-1.cif" {
		Te.Errorf("Refined model file is %q", h.ModelFile())
	}
}

func TestDamaverParsing(Te *testing.T) {
	d := NewDamaver()
	d.SetPrefix("test/lys")
	mean, sd, err := d.MeanNSD()
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("mean NSD:", mean, "+-", sd)
	if math.Abs(mean-0.521) > 1e-9 || math.Abs(sd-0.034) > 1e-9 {
		Te.Errorf("Mean NSD %v +- %v, expected 0.521 +- 0.034", mean, sd)
	}
	entries, err := d.PerModel()
	if err != nil {
		Te.Fatal(err)
	}
	if len(entries) != 5 {
		Te.Fatalf("Expected 5 per-model entries, got %d", len(entries))
	}
	excluded := 0
	for _, e := range entries {
		fmt.Println(e.File, e.NSD, e.Included)
		if !e.Included {
			excluded++
			if e.File != "lys_04-1.cif" {
				Te.Errorf("The wrong model was excluded: %s", e.File)
			}
		}
	}
	if excluded != 1 {
		Te.Errorf("Expected 1 excluded model, got %d", excluded)
	}
}

func TestDamaverInput(Te *testing.T) {
	d := NewDamaver()
	d.SetPrefix("lys")
	if err := d.BuildInput([]string{"test/lys_01-1.cif"}); err == nil {
		Te.Error("A single model was accepted for averaging")
	}
	if err := d.BuildInput([]string{"test/lys_01-1.cif", "test/missing.cif"}); err == nil {
		Te.Error("A missing model file was accepted")
	}
}

//TestCollect checks that the default damaver output names get renamed to
//the prefixed convention.
func TestCollect(Te *testing.T) {
	for _, f := range []string{"damaver.cif", "damfilt.cif", "damstart.cif"} {
		if err := os.WriteFile(f, []byte("data_x\n"), 0644); err != nil {
			Te.Fatal(err)
		}
	}
	d := NewDamaver()
	d.SetPrefix("test/collect")
	averaged, filtered, damstart, err := d.Collect()
	if err != nil {
		Te.Fatal(err)
	}
	if averaged != "test/collect_damaver_aligned.cif" {
		Te.Errorf("The averaged model went to %q", averaged)
	}
	if filtered != "test/collect_damfilt.cif" || damstart != "test/collect_damstart.cif" {
		Te.Errorf("Collected names: %q, %q", filtered, damstart)
	}
	if _, err := os.Stat("damaver.cif"); err == nil {
		Te.Error("The default-named file is still around after collecting")
	}
	for _, f := range []string{averaged, filtered, damstart} {
		os.Remove(f)
	}
}

func TestAlignedName(Te *testing.T) {
	if got := AlignedName("lys_damaver_aligned.cif"); got != "lys_damaver_aligned_aligned.cif" {
		Te.Errorf("AlignedName gave %q", got)
	}
	if got := AlignedName("refine_lys-1.cif"); got != "refine_lys-1_aligned.cif" {
		Te.Errorf("AlignedName gave %q", got)
	}
}

func TestSasresParsing(Te *testing.T) {
	s := NewSasres()
	s.SetPrefix("test/lys")
	res, sd, err := s.Resolution()
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println("resolution:", res, "+-", sd)
	if res != 27 || sd != 3 {
		Te.Errorf("Resolution %v +- %v, expected 27 +- 3", res, sd)
	}
}

func TestVersion(Te *testing.T) {
	v, err := ParseVersion("dammif, ATSAS 3.2.1 (r14731)")
	if err != nil {
		Te.Fatal(err)
	}
	if v.Major != 3 || v.Minor != 2 || v.Patch != 1 {
		Te.Errorf("Parsed version %v", v)
	}
	if !v.AtLeast(3, 1, 0) {
		Te.Error("3.2.1 should be at least 3.1.0")
	}
	if v.AtLeast(3, 3, 0) {
		Te.Error("3.2.1 should not be at least 3.3.0")
	}
	if (Version{3, 0, 3}).AtLeast(3, 1, 0) {
		Te.Error("3.0.3 should not be at least 3.1.0")
	}
	if v.String() != "3.2.1" {
		Te.Errorf("String() gave %q", v.String())
	}
	if _, err := ParseVersion("no version here"); err == nil {
		Te.Error("Garbage was parsed as a version")
	}
}

func TestPipelineNaming(Te *testing.T) {
	p := NewPipeline("lys", "lys.out")
	if got := p.runName(1); got != "lys_01" {
		Te.Errorf("Run 1 is named %q", got)
	}
	if got := p.runName(12); got != "lys_12" {
		Te.Errorf("Run 12 is named %q", got)
	}
	if csvFloat(math.NaN()) != "" {
		Te.Error("NaN should become an empty csv cell")
	}
	if csvFloat(1.5) != "1.5" {
		Te.Errorf("csvFloat(1.5) gave %q", csvFloat(1.5))
	}
}

func TestWriteCSV(Te *testing.T) {
	p := NewPipeline("test/lys", "lys.out")
	res := new(Results)
	res.Runs = []RunResult{
		{Name: "lys_01", ModelFile: "lys_01-1.cif", Stats: &Stats{ChiSq: 1.05, Rg: 15.3, Dmax: 48}, NSD: 0.512, Included: true},
		{Name: "lys_02", ModelFile: "lys_02-1.cif", Stats: &Stats{ChiSq: 1.10, Rg: 15.1, Dmax: 47}, NSD: 0.887, Included: false},
		{Name: "lys_03", Err: Error{ErrNotRunning, Dammif, "lys_03", "", nil, false}},
	}
	res.MeanNSD = 0.521
	res.NSDStdDev = 0.034
	res.Refined = "refine_lys-1.cif"
	res.RefinedStats = &Stats{ChiSq: 0.987, Rg: 15.21, Dmax: math.NaN()}
	res.Resolution = 27
	res.ResolutionSD = 3
	name, err := p.WriteCSV(res)
	if err != nil {
		Te.Fatal(err)
	}
	if name != "test/lys_dammif_results.csv" {
		Te.Errorf("The results table went to %q", name)
	}
	content, err := readAll(name)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println(content)
	if !strings.Contains(content, "lys_01") || !strings.Contains(content, "refine_test/lys") {
		Te.Error("The results table is missing rows")
	}
	if strings.Contains(content, "lys_03") {
		Te.Error("A failed run made it into the results table")
	}
	if !strings.Contains(content, "Mean NSD,0.521") {
		Te.Error("The mean NSD summary is missing")
	}
}
