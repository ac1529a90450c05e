package pw

import (
	"strconv"
	"strings"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

//The markers that open a block of atomic positions, and the one that
//marks the final-coordinates reprint, after which nothing new appears.
const (
	cartesianAxesMarker = "Cartesian axes"
	crystalPosMarker    = "ATOMIC_POSITIONS (crystal)"
	angstromPosMarker   = "ATOMIC_POSITIONS (angstrom)"
	bohrPosMarker       = "ATOMIC_POSITIONS (bohr)"
	alatPosMarker       = "ATOMIC_POSITIONS (alat)"
	finalCoordsMarker   = "Begin final coordinates"
)

//positionsMarker returns which position block, if any, starts at line.
func positionsMarker(line string) string {
	markers := []string{cartesianAxesMarker, crystalPosMarker, angstromPosMarker, bohrPosMarker, alatPosMarker}
	for _, m := range markers {
		if strings.Contains(line, m) {
			return m
		}
	}
	return ""
}

//readTauBlock reads the site table pw.x prints after a "Cartesian axes"
//line, i pointing at the marker. A couple of presentation lines sit
//between the marker and the first entry, then each entry looks like
//    1           Si  tau(   1) = (   0.0000000   0.0000000   0.0000000  )
//with the coordinates in alat units. Returns the labels, the cartesian
//coordinates in Angstroms, and the index of the first line after the
//block, which ends at the first non-tau line.
func readTauBlock(lines []string, i int, alat float64) ([]string, *v3.Matrix, int, error) {
	j := i + 1
	for ; j < len(lines) && !strings.Contains(lines[j], "tau("); j++ {
		if j-i > 5 {
			return nil, nil, 0, Error{MalformedLog, "no tau( entries after a Cartesian axes header", "", []string{"readTauBlock"}, true}
		}
	}
	var labels []string
	var coords [][3]float64
	for ; j < len(lines) && strings.Contains(lines[j], "tau("); j++ {
		fields := strings.Fields(lines[j])
		if len(fields) < 2 {
			return nil, nil, 0, Error{MalformedLog, "truncated tau( entry: " + strings.TrimSpace(lines[j]), "", []string{"readTauBlock"}, true}
		}
		comps, err := parenFloats(lines[j], 3)
		if err != nil {
			return nil, nil, 0, errDecorate(err, "readTauBlock")
		}
		labels = append(labels, fields[1])
		coords = append(coords, [3]float64{comps[0] * alat, comps[1] * alat, comps[2] * alat})
	}
	if len(labels) == 0 {
		return nil, nil, 0, Error{MalformedLog, "empty Cartesian axes block", "", []string{"readTauBlock"}, true}
	}
	return labels, coordsMatrix(coords), j, nil
}

//readCardBlock reads the coordinate lines following an ATOMIC_POSITIONS
//card, i pointing at the card line. Each entry looks like
//    Si       0.251000000   0.249000000   0.250000000
//optionally with if_pos constraint flags appended, which are ignored.
//The block terminates itself at the first line that does not parse as a
//coordinate. Units are whatever the card says, the caller converts.
func readCardBlock(lines []string, i int) ([]string, *v3.Matrix, int, error) {
	var labels []string
	var coords [][3]float64
	j := i + 1
	for ; j < len(lines); j++ {
		fields := strings.Fields(lines[j])
		if len(fields) < 4 {
			break
		}
		var comp [3]float64
		ok := true
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				ok = false
				break
			}
			comp[k] = v
		}
		if !ok {
			break
		}
		labels = append(labels, fields[0])
		coords = append(coords, comp)
	}
	if len(labels) == 0 {
		return nil, nil, 0, Error{MalformedLog, "empty ATOMIC_POSITIONS block", "", []string{"readCardBlock"}, true}
	}
	return labels, coordsMatrix(coords), j, nil
}

//readPositions turns the position block starting at line i into labels
//and cartesian coordinates in Angstroms, converting from whatever unit
//the block's marker announces.
func readPositions(lines []string, i int, marker string, cell *v3.Matrix, alat float64) ([]string, *v3.Matrix, int, error) {
	switch marker {
	case cartesianAxesMarker:
		return readTauBlock(lines, i, alat)
	case crystalPosMarker:
		labels, frac, next, err := readCardBlock(lines, i)
		if err != nil {
			return nil, nil, 0, errDecorate(err, "readPositions")
		}
		cart := v3.Zeros(frac.NVecs())
		cart.Mul(frac, cell) //row vectors times the cell matrix
		return labels, cart, next, nil
	case angstromPosMarker:
		return readCardBlock(lines, i)
	case bohrPosMarker:
		labels, coord, next, err := readCardBlock(lines, i)
		if err != nil {
			return nil, nil, 0, errDecorate(err, "readPositions")
		}
		coord.Scale(chem.Bohr2A, coord)
		return labels, coord, next, nil
	case alatPosMarker:
		labels, coord, next, err := readCardBlock(lines, i)
		if err != nil {
			return nil, nil, 0, errDecorate(err, "readPositions")
		}
		coord.Scale(alat, coord)
		return labels, coord, next, nil
	}
	return nil, nil, 0, Error{MalformedLog, "unknown positions block: " + marker, "", []string{"readPositions"}, true}
}

func coordsMatrix(coords [][3]float64) *v3.Matrix {
	m := v3.Zeros(len(coords))
	for i, c := range coords {
		m.Set(i, 0, c[0])
		m.Set(i, 1, c[1])
		m.Set(i, 2, c[2])
	}
	return m
}
