/*
 * cif.go, part of gosas.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var tl func(string) string = strings.ToLower

// cifmap maps _atom_site field names to their column index in the loop
// being read, or -1 when the field is not present.
type cifmap map[string]int

// adds i to the map[string] entry, if it exists. If not, does nothing.
func (m cifmap) add(s string, i int) cifmap {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, "\n", "", -1)
	if _, ok := m[s]; ok {
		m[s] = i
	}
	return m
}

// returns the index corresponding to the given field in the map, or -1 if
// the field is not a key in the map.
func (m cifmap) get(s string) int {
	if i, ok := m[s]; ok {
		return i
	}
	return -1
}

func newcifmap() cifmap {
	return cifmap(map[string]int{
		"_atom_site.group_pdb":          -1,
		"_atom_site.id":                 -1,
		"_atom_site.type_symbol":        -1,
		"_atom_site.label_atom_id":      -1,
		"_atom_site.label_comp_id":      -1,
		"_atom_site.label_asym_id":      -1,
		"_atom_site.auth_atom_id":       -1,
		"_atom_site.auth_comp_id":       -1,
		"_atom_site.auth_asym_id":       -1,
		"_atom_site.auth_seq_id":        -1,
		"_atom_site.cartn_x":            -1,
		"_atom_site.cartn_y":            -1,
		"_atom_site.cartn_z":            -1,
		"_atom_site.occupancy":          -1,
		"_atom_site.b_iso_or_equiv":     -1,
		"_atom_site.pdbx_pdb_model_num": -1,
	})
}

func cifNextLoop(cif *bufio.Reader) (string, error) {
	for {
		line, err := cif.ReadString('\n')
		if err != nil {
			return line, err
		}
		if strings.HasPrefix(tl(line), "loop_") {
			return line, nil
		}
	}
}

func cifFillCoords(data []string, coord []float64, m cifmap) ([]float64, error) {
	c := []string{"_atom_site.cartn_x", "_atom_site.cartn_y", "_atom_site.cartn_z"}
	for j, v := range c {
		k := m.get(v)
		if k < 0 || k >= len(data) {
			return coord, cerr("cifFillCoords", "Field %s not present in data %v", v, data)
		}
		fl, err := strconv.ParseFloat(data[k], 64)
		if err != nil {
			return coord, cerr("cifFillCoords", "Couldn't parse %d th cartesian coordinate from %s: %v", j, data[k], err)
		}
		coord = append(coord, fl)
	}
	return coord, nil
}

func cifFillFloat(data []string, field string, m cifmap, def float64) float64 {
	k := m.get(field)
	if k < 0 || k >= len(data) {
		return def
	}
	fl, err := strconv.ParseFloat(data[k], 64)
	if err != nil {
		return def
	}
	return fl
}

// CIFRead reads a dummy-atom model from an mmCIF _atom_site loop. Only the
// first model of a multi-model file is read. Unrelated loops and data blocks
// are skipped.
func CIFRead(in io.Reader, name string) (*Model, error) {
	cif := bufio.NewReader(in)
	m := newcifmap()
	var coords []float64
	var occ, bfac []float64
	var reading bool
	field := 0
	hp := strings.HasPrefix
	trimall := func(s string) string { return strings.TrimSpace(strings.Replace(s, "\n", "", -1)) }
	for {
		line, err := cif.ReadString('\n')
		if err != nil {
			break
		}
		if hp(line, "#") || hp(line, ";") || trimall(line) == "" {
			continue
		}
		if !reading && hp(tl(line), "_atom_site") {
			reading = true
			field = 0
		}
		if !reading {
			if _, err := cifNextLoop(cif); err != nil {
				break
			}
			continue
		}
		if hp(line, "loop_") { //a new section
			reading = false
			continue
		}
		if hp(line, "_") {
			if !hp(tl(line), "_atom_site") || hp(tl(line), "_atom_site_anisotrop") {
				reading = false
				continue
			}
			m.add(tl(line), field)
			field++
			continue
		}
		//a content line
		fields := strings.Fields(line)
		if modkey := m.get("_atom_site.pdbx_pdb_model_num"); modkey >= 0 && modkey < len(fields) {
			if mod, err := strconv.Atoi(fields[modkey]); err == nil && mod > 1 {
				continue //beads are the same in every model, we keep the first
			}
		}
		var err2 error
		coords, err2 = cifFillCoords(fields, coords, m)
		if err2 != nil {
			return nil, errDecorate(err2, fmt.Sprintf("CIFRead: bead %d", len(occ)+1))
		}
		occ = append(occ, cifFillFloat(fields, "_atom_site.occupancy", m, 1))
		bfac = append(bfac, cifFillFloat(fields, "_atom_site.b_iso_or_equiv", m, 0))
	}
	if len(coords) == 0 {
		return nil, cerr("CIFRead", "No beads found in %s", name)
	}
	model := new(Model)
	model.XYZ = mat.NewDense(len(coords)/3, 3, coords)
	model.Occupancy = occ
	model.Bfactors = bfac
	model.Name = name
	model.Radius = DefaultBeadRadius
	return model, nil
}

// CIFFileRead reads a dummy-atom model from an mmCIF file.
func CIFFileRead(name string) (*Model, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "CIFFileRead"}}
	}
	defer f.Close()
	model, err2 := CIFRead(f, filepath.Base(name))
	if err2 != nil {
		return nil, errDecorate(err2, "CIFFileRead")
	}
	return model, nil
}

// CIFWrite writes a dummy-atom model as an mmCIF _atom_site loop. Every
// bead becomes a CA atom of a DAM residue, the convention of the ATSAS
// bead-model programs.
func CIFWrite(out io.Writer, model *Model, name string) error {
	if model == nil || model.XYZ == nil {
		return CError{string(ErrNilData), []string{"CIFWrite"}}
	}
	n := "gosas"
	if name != "" {
		n = strings.TrimSuffix(name, filepath.Ext(name))
	}
	out.Write([]byte(fmt.Sprintf("data_%s\n#\n", n)))
	out.Write([]byte("loop_\n"))
	out.Write([]byte("_atom_site.group_PDB\n"))
	out.Write([]byte("_atom_site.id\n"))
	out.Write([]byte("_atom_site.type_symbol\n"))
	out.Write([]byte("_atom_site.auth_atom_id\n"))
	out.Write([]byte("_atom_site.auth_comp_id\n"))
	out.Write([]byte("_atom_site.auth_asym_id\n"))
	out.Write([]byte("_atom_site.auth_seq_id\n"))
	out.Write([]byte("_atom_site.Cartn_x\n_atom_site.Cartn_y\n_atom_site.Cartn_z\n"))
	out.Write([]byte("_atom_site.occupancy\n"))
	out.Write([]byte("_atom_site.B_iso_or_equiv\n"))
	for k := 0; k < model.Len(); k++ {
		occ := 1.0
		if k < len(model.Occupancy) {
			occ = model.Occupancy[k]
		}
		bf := 0.0
		if k < len(model.Bfactors) {
			bf = model.Bfactors[k]
		}
		line := fmt.Sprintf("ATOM %d C CA DAM A %d %8.3f %8.3f %8.3f %4.2f %5.2f\n",
			k+1, k+1, model.XYZ.At(k, 0), model.XYZ.At(k, 1), model.XYZ.At(k, 2), occ, bf)
		if _, err := out.Write([]byte(line)); err != nil {
			return CError{err.Error(), []string{"io.Writer.Write", "CIFWrite"}}
		}
	}
	out.Write([]byte("#\n"))
	return nil
}

// CIFFileWrite writes a dummy-atom model to an mmCIF file.
func CIFFileWrite(name string, model *Model) error {
	f, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "CIFFileWrite"}}
	}
	defer f.Close()
	return CIFWrite(f, model, filepath.Base(name))
}
