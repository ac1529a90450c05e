/*
 * cell.go, part of gopw.
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
	"strconv"
	"strings"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

//The cell-related markers pw.x prints once per calculation.
const (
	bravaisMarker = "bravais-lattice index"
	alatMarker    = "lattice parameter (alat)"
	axesMarker    = "crystal axes: (cart. coord. in units of alat)"
	natomsMarker  = "number of atoms/cell"
	speciesMarker = "atomic species "
)

//afterEq returns the text after the first '=' in line.
func afterEq(line string) (string, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", false
	}
	return parts[1], true
}

//firstFloat parses the first whitespace-separated token after the '='
//in line as a float64. Only plain floating point syntax is accepted.
func firstFloat(line string) (float64, error) {
	after, ok := afterEq(line)
	if !ok {
		return 0, Error{MalformedLog, "no '=' in line: " + strings.TrimSpace(line), "", []string{"firstFloat"}, true}
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, Error{MalformedLog, "no value after '=' in line: " + strings.TrimSpace(line), "", []string{"firstFloat"}, true}
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, Error{MalformedLog, err.Error() + " in line: " + strings.TrimSpace(line), "", []string{"firstFloat"}, true}
	}
	return v, nil
}

//firstInt is firstFloat for integer-valued fields.
func firstInt(line string) (int, error) {
	after, ok := afterEq(line)
	if !ok {
		return 0, Error{MalformedLog, "no '=' in line: " + strings.TrimSpace(line), "", []string{"firstInt"}, true}
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, Error{MalformedLog, "no value after '=' in line: " + strings.TrimSpace(line), "", []string{"firstInt"}, true}
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, Error{MalformedLog, err.Error() + " in line: " + strings.TrimSpace(line), "", []string{"firstInt"}, true}
	}
	return v, nil
}

//parenFloats reads want floats from the parenthesized vector pw.x
//prints after the '=' in lines like
//    a(1) = (   1.000000   0.000000   0.000000 )
func parenFloats(line string, want int) ([]float64, error) {
	after, ok := afterEq(line)
	if !ok {
		return nil, Error{MalformedLog, "no '=' in vector line: " + strings.TrimSpace(line), "", []string{"parenFloats"}, true}
	}
	after = strings.Replace(after, "(", " ", -1)
	after = strings.Replace(after, ")", " ", -1)
	fields := strings.Fields(after)
	if len(fields) < want {
		return nil, Error{MalformedLog, fmt.Sprintf("want %d vector components in line: %s", want, strings.TrimSpace(line)), "", []string{"parenFloats"}, true}
	}
	ret := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, Error{MalformedLog, err.Error() + " in line: " + strings.TrimSpace(line), "", []string{"parenFloats"}, true}
		}
		ret[i] = v
	}
	return ret, nil
}

//parseCell extracts the lattice parameter and the unit cell from the
//lines of one calculation segment. The segment must describe exactly
//one fixed, free (ibrav=0) cell: one bravais-lattice line with index 0,
//one lattice parameter line and one crystal axes block. Anything else,
//including the repeated cell prints of a variable-cell run, is an
//unsupported cell model. The cell is returned in Angstroms, with the
//lattice vectors as rows, together with the lattice parameter, also
//already in Angstroms.
func parseCell(lines []string) (*v3.Matrix, float64, error) {
	var bravais, alats, axes []int //line indexes of each marker
	for i, line := range lines {
		switch {
		case strings.Contains(line, bravaisMarker):
			bravais = append(bravais, i)
		case strings.Contains(line, alatMarker):
			alats = append(alats, i)
		case strings.Contains(line, axesMarker):
			axes = append(axes, i)
		}
	}
	if len(bravais) != 1 || len(alats) != 1 || len(axes) != 1 {
		details := fmt.Sprintf("found %d bravais-lattice, %d lattice parameter and %d crystal axes lines, want exactly 1 of each", len(bravais), len(alats), len(axes))
		return nil, 0, Error{UnsupportedCellModel, details, "", []string{"parseCell"}, true}
	}
	ibrav, err := firstInt(lines[bravais[0]])
	if err != nil {
		return nil, 0, errDecorate(err, "parseCell")
	}
	if ibrav != 0 {
		return nil, 0, Error{UnsupportedCellModel, fmt.Sprintf("bravais-lattice index %d, only 0 (free) is supported", ibrav), "", []string{"parseCell"}, true}
	}
	alat, err := firstFloat(lines[alats[0]])
	if err != nil {
		return nil, 0, errDecorate(err, "parseCell")
	}
	alat *= chem.Bohr2A //pw.x prints alat in bohrs
	if alat <= 0 {
		return nil, 0, Error{MalformedLog, fmt.Sprintf("non-positive lattice parameter %f", alat), "", []string{"parseCell"}, true}
	}
	start := axes[0] + 1
	if start+3 > len(lines) {
		return nil, 0, Error{MalformedLog, "crystal axes block truncated", "", []string{"parseCell"}, true}
	}
	cell := v3.Zeros(3)
	for i := 0; i < 3; i++ {
		comps, err := parenFloats(lines[start+i], 3)
		if err != nil {
			return nil, 0, errDecorate(err, "parseCell")
		}
		for j, v := range comps {
			cell.Set(i, j, v*alat)
		}
	}
	return cell, alat, nil
}

//parseSpecies reads the atomic species table starting right after line
//i, returning label to mass assignments. The table is optional, a
//missing or truncated one just limits what masses can be given to the
//atoms, so no errors are reported.
func parseSpecies(lines []string, i int) map[string]float64 {
	masses := make(map[string]float64)
	for _, line := range lines[i+1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			break
		}
		mass, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			break
		}
		masses[fields[0]] = mass
	}
	return masses
}
