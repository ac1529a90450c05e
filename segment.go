/*
 * segment.go, part of gopw.
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
	"strings"
)

//energyMarker opens the total energy line pw.x prints on each SCF
//convergence. The unmarked partial energies lack the leading '!'.
const energyMarker = "!    total energy"

//The states of the segment scan. The cell description always precedes
//the first positions block in pw.x output, so the scan only starts
//collecting structures once the crystal axes block went by.
const (
	seekingCell = iota
	seekingPositions
	done
)

//ParseSegment extracts every structure snapshot printed in one
//calculation segment, in file order. A snapshot is produced for each
//positions block until the final-coordinates reprint, if any, which
//only repeats the last geometry and is never counted. Total energies
//are matched to snapshots in print order; a snapshot whose energy never
//got printed (an aborted SCF, or the initial geometry of some runs)
//keeps a NaN energy. The unit cell must be unique and free-form, as
//checked by parseCell.
func ParseSegment(segment string) ([]*Snapshot, error) {
	lines := strings.Split(segment, "\n")
	cell, alat, err := parseCell(lines)
	if err != nil {
		return nil, errDecorate(err, "ParseSegment")
	}
	var snaps []*Snapshot
	var energies []float64
	masses := make(map[string]float64)
	declared := -1 //atoms/cell count the log declares, -1 until seen
	state := seekingCell
	i := 0
	for i < len(lines) && state != done {
		line := lines[i]
		if strings.Contains(line, finalCoordsMarker) {
			state = done
			break
		}
		switch state {
		case seekingCell:
			if strings.Contains(line, axesMarker) {
				state = seekingPositions
				i += 4 //parseCell already read the three lattice vector lines
				continue
			}
			if strings.Contains(line, natomsMarker) && declared < 0 {
				if declared, err = firstInt(line); err != nil {
					return nil, errDecorate(err, "ParseSegment")
				}
			}
		case seekingPositions:
			if marker := positionsMarker(line); marker != "" {
				labels, coords, next, err := readPositions(lines, i, marker, cell, alat)
				if err != nil {
					return nil, errDecorate(err, "ParseSegment")
				}
				if declared >= 0 && len(labels) != declared {
					details := fmt.Sprintf("positions block with %d atoms, log declares %d", len(labels), declared)
					return nil, Error{MalformedLog, details, "", []string{"ParseSegment"}, true}
				}
				snaps = append(snaps, newSnapshot(labels, coords, cell, masses))
				i = next
				continue
			}
			if strings.Contains(line, energyMarker) {
				e, err := firstFloat(line)
				if err != nil {
					return nil, errDecorate(err, "ParseSegment")
				}
				energies = append(energies, e*Ry2eV)
			}
			if strings.Contains(line, speciesMarker) {
				for k, v := range parseSpecies(lines, i) {
					masses[k] = v
				}
			}
		}
		i++
	}
	for k, e := range energies {
		if k >= len(snaps) {
			break
		}
		snaps[k].Energy = e
	}
	return snaps, nil
}

//SelectSnapshot returns the snapshot at position i among snaps,
//counting from the end when i is negative: -1 is the last snapshot, the
//most relaxed geometry of the run, which is nearly always the one
//wanted.
func SelectSnapshot(snaps []*Snapshot, i int) (*Snapshot, error) {
	j := i
	if j < 0 {
		j += len(snaps)
	}
	if j < 0 || j >= len(snaps) {
		return nil, Error{MalformedLog, fmt.Sprintf("snapshot %d requested, segment has %d", i, len(snaps)), "", []string{"SelectSnapshot"}, true}
	}
	return snaps[j], nil
}
