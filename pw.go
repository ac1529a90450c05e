/*
 * pw.go, part of gopw.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 * goPW is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package pw

import (
	"fmt"
	"io"
	"math"
	"os"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	"gonum.org/v1/gonum/mat"
)

//Conversions the upstream library lacks
const (
	Ry2eV = 13.605693122994 //Rydberg to electronvolt
	EV2Ry = 1 / 13.605693122994
)

//Snapshot is one atomic configuration extracted from pw.x output:
//atoms, cartesian coordinates, the fixed unit cell and, when the log
//provides one, the SCF total energy. It fullfills chem.Atomer.
type Snapshot struct {
	Atoms  []*chem.Atom
	Coords *v3.Matrix //cartesian, Angstrom
	Cell   *v3.Matrix //lattice vectors as rows, Angstrom
	Energy float64    //eV, NaN when the log carries none
}

//Atom returns the atom at position i.
func (S *Snapshot) Atom(i int) *chem.Atom {
	return S.Atoms[i]
}

//Len returns the number of atoms in the snapshot.
func (S *Snapshot) Len() int {
	return len(S.Atoms)
}

//Symbols returns the element symbol of each atom, in order.
func (S *Snapshot) Symbols() []string {
	ret := make([]string, len(S.Atoms))
	for i, at := range S.Atoms {
		ret[i] = at.Symbol
	}
	return ret
}

//Box returns the cell as the row-major 9-float slice that trajectory
//writers take as box information.
func (S *Snapshot) Box() []float64 {
	b := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b[3*i+j] = S.Cell.At(i, j)
		}
	}
	return b
}

//Volume returns the cell volume in cubic Angstroms.
func (S *Snapshot) Volume() float64 {
	return math.Abs(mat.Det(S.Cell))
}

//HasEnergy returns true if the snapshot got a total energy from the log.
func (S *Snapshot) HasEnergy() bool {
	return !math.IsNaN(S.Energy)
}

//newSnapshot assembles a snapshot from parsed labels and coordinates.
//Masses come from the species table of the log when available, from
//the package's element table otherwise. Each snapshot gets its own
//copy of the cell.
func newSnapshot(labels []string, coords, cell *v3.Matrix, masses map[string]float64) *Snapshot {
	S := &Snapshot{Coords: coords, Energy: math.NaN()}
	S.Cell = v3.Zeros(3)
	S.Cell.Copy(cell)
	S.Atoms = make([]*chem.Atom, len(labels))
	for i, label := range labels {
		at := new(chem.Atom)
		at.Name = label
		at.ID = i + 1
		at.MolID = 1
		at.Symbol = baseSymbol(label)
		if m, ok := masses[label]; ok {
			at.Mass = m
		} else {
			at.Mass = symbolMass[at.Symbol] //zero for the exotic ones
		}
		S.Atoms[i] = at
	}
	return S
}

//Read parses a whole pw.x log from r, returning the snapshots of each
//calculation segment found, in file order. Text before the first
//calculation is ignored. A failing segment fails the whole read.
func Read(r io.Reader) ([][]*Snapshot, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ret, err := parseAll(string(buf))
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	return ret, nil
}

//FileRead opens and parses the pw.x log in the file name. Parse errors
//get tagged with the file name, I/O errors are returned as they came.
func FileRead(name string) ([][]*Snapshot, error) {
	buf, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	ret, err := parseAll(string(buf))
	if err != nil {
		if pwerr, ok := err.(Error); ok {
			pwerr.filename = name
			return nil, errDecorate(pwerr, "FileRead")
		}
		return nil, err
	}
	return ret, nil
}

func parseAll(text string) ([][]*Snapshot, error) {
	var ret [][]*Snapshot
	for k, seg := range Segments(text) {
		snaps, err := ParseSegment(seg)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("segment %d", k+1))
		}
		ret = append(ret, snaps)
	}
	return ret, nil
}
