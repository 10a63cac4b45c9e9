/*
 * results.go, part of gosas.
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

	"github.com/qbead/gosas/atsas"
	"github.com/qbead/gosas/sasplot"
	"github.com/spf13/cobra"
)

var resultsPlot bool

var resultsCmd = &cobra.Command{
	Use:   "results prefix",
	Short: "Summarize a finished reconstruction from its log files.",
	Long: `results re-reads the logs a reconstruction left behind (the per-run
DAMMIF logs, the DAMMIN refinement log and the DAMAVER log) and prints the
per-model statistics and NSD table. Useful for runs launched detached, or
to inspect a reconstruction done by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := args[0]
		fmt.Printf("%-22s %8s %8s %8s\n", "Model", "Chi^2", "Rg", "Dmax")
		for n := 1; ; n++ {
			name := fmt.Sprintf("%s_%02d", prefix, n)
			if _, err := os.Stat(name + ".log"); err != nil {
				break
			}
			h := atsas.NewDammifHandle()
			h.SetName(name)
			st, err := h.Stats()
			if err != nil {
				fmt.Printf("%-22s %s\n", name, "failed")
				continue
			}
			fmt.Printf("%-22s %8.3f %8.2f %8.1f\n", name, st.ChiSq, st.Rg, st.Dmax)
		}
		refName := "refine_" + prefix
		if _, err := os.Stat(refName + ".log"); err == nil {
			h := atsas.NewDamminHandle()
			h.SetName(refName)
			if st, err := h.Stats(); err == nil {
				dmax := "-"
				if !math.IsNaN(st.Dmax) {
					dmax = fmt.Sprintf("%8.1f", st.Dmax)
				}
				fmt.Printf("%-22s %8.3f %8.2f %8s\n", refName, st.ChiSq, st.Rg, dmax)
			}
		}
		d := atsas.NewDamaver()
		d.SetPrefix(prefix)
		mean, sd, err := d.MeanNSD()
		if err != nil {
			return err
		}
		fmt.Printf("\nMean NSD: %.3f +- %.3f\n", mean, sd)
		entries, err := d.PerModel()
		if err != nil {
			return err
		}
		for _, e := range entries {
			state := "included"
			if !e.Included {
				state = "excluded"
			}
			fmt.Printf("%-22s NSD %6.3f  %s\n", e.File, e.NSD, state)
		}
		if resultsPlot {
			if err := sasplot.NSDPlot(entries, "NSD per model", prefix+"_nsd"); err != nil {
				return err
			}
			fmt.Println("wrote", prefix+"_nsd.png")
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().BoolVar(&resultsPlot, "plot", false, "also write the NSD plot as png")
}
