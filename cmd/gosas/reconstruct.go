/*
 * reconstruct.go, part of gosas.
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

package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/qbead/gosas/atsas"
	"github.com/spf13/cobra"
)

var (
	recPrefix   string
	recRuns     int
	recWorkers  int
	recMode     string
	recSymmetry string
	recRefine   bool
	recAlignTo  string
	recNoSasres bool
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct profile.out",
	Short: "Reconstruct a bead model from a P(r) distribution.",
	Long: `reconstruct runs several independent DAMMIF reconstructions from a
GNOM-style .out file, averages and filters them with DAMAVER, refines the
consensus with DAMMIN, optionally superimposes everything onto a reference
structure with CIFSUP, and estimates the resolution with SASRES. A summary
of every run ends up in <prefix>_dammif_results.csv.

The ATSAS programs must be installed and on the PATH (or configured in
gosas.yaml under programs:).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := recPrefix
		if prefix == "" {
			prefix = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		p := atsas.NewPipeline(prefix, args[0])
		p.Runs = recRuns
		p.Workers = recWorkers
		p.Par.Mode = recMode
		p.Par.Symmetry = recSymmetry
		p.Refine = recRefine
		p.AlignTo = recAlignTo
		p.Resolution = !recNoSasres
		p.DammifCommand = cfg.GetString("programs.dammif")
		p.DamminCommand = cfg.GetString("programs.dammin")
		p.DamaverCommand = cfg.GetString("programs.damaver")
		p.CifsupCommand = cfg.GetString("programs.cifsup")
		p.SasresCommand = cfg.GetString("programs.sasres")
		p.OnStatus = func(s atsas.PipelineStatus) {
			if s.Err != nil {
				fmt.Fprintf(os.Stderr, "%s %d/%d failed: %v\n", s.Stage, s.Run, s.Total, s.Err)
				return
			}
			if s.Run > 0 {
				fmt.Printf("%s %d/%d done\n", s.Stage, s.Run, s.Total)
			} else {
				fmt.Printf("%s...\n", s.Stage)
			}
		}
		p.Cancel = make(chan struct{})
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		go func() {
			<-sig
			close(p.Cancel)
		}()
		res, err := p.Run()
		if err != nil {
			return err
		}
		printResults(prefix, res)
		csvName, err := p.WriteCSV(res)
		if err != nil {
			return err
		}
		fmt.Println("wrote", csvName)
		return nil
	},
}

func init() {
	f := reconstructCmd.Flags()
	f.StringVarP(&recPrefix, "prefix", "p", "", "prefix for run names and output files (default: input basename)")
	f.IntVarP(&recRuns, "runs", "n", 15, "number of independent DAMMIF runs")
	f.IntVarP(&recWorkers, "workers", "w", 0, "max concurrent runs (0: all CPUs)")
	f.StringVarP(&recMode, "mode", "m", "fast", "dammif mode: fast, slow or interactive")
	f.StringVarP(&recSymmetry, "symmetry", "s", "P1", "particle symmetry (P1, P2...)")
	f.BoolVar(&recRefine, "refine", true, "refine the averaged model with DAMMIN")
	f.StringVar(&recAlignTo, "align-to", "", "superimpose all models onto this structure with CIFSUP")
	f.BoolVar(&recNoSasres, "no-sasres", false, "skip the SASRES resolution estimate")
}

// flagOrConfig wiring: cobra flag defaults are replaced by the config file
// values unless the user set the flag explicitly.
func flagDefaultsFromConfig() {
	f := reconstructCmd.Flags()
	if !f.Changed("runs") {
		recRuns = cfg.GetInt("runs")
	}
	if !f.Changed("mode") {
		recMode = cfg.GetString("mode")
	}
	if !f.Changed("symmetry") {
		recSymmetry = cfg.GetString("symmetry")
	}
	if !f.Changed("refine") {
		recRefine = cfg.GetBool("refine")
	}
	if !f.Changed("no-sasres") {
		recNoSasres = !cfg.GetBool("resolution")
	}
}

func printResults(prefix string, res *atsas.Results) {
	ok := 0
	for _, r := range res.Runs {
		if r.Err == nil {
			ok++
		}
	}
	fmt.Printf("\n%d of %d runs finished\n", ok, len(res.Runs))
	fmt.Printf("Mean NSD: %.3f +- %.3f\n", res.MeanNSD, res.NSDStdDev)
	fmt.Println("averaged model:", res.Averaged)
	if res.Filtered != "" {
		fmt.Println("filtered model:", res.Filtered)
	}
	if res.Refined != "" {
		fmt.Println("refined model:", res.Refined)
		if res.RefinedStats != nil {
			fmt.Printf("  Chi^2: %.3f  Rg: %.2f", res.RefinedStats.ChiSq, res.RefinedStats.Rg)
			if !math.IsNaN(res.RefinedStats.Dmax) {
				fmt.Printf("  Dmax: %.1f", res.RefinedStats.Dmax)
			}
			fmt.Println()
		}
	}
	if res.Resolution != 0 {
		fmt.Printf("Resolution: %.0f +- %.0f A\n", res.Resolution, res.ResolutionSD)
	}
}
