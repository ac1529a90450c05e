package pw

import (
	"fmt"
	"math"
	"strings"
	"testing"

	chem "github.com/rmera/gochem"
)

//Pieces of pw.x output, composed into segments by the tests. The cell
//is the free (ibrav=0) identity cell with alat of 10 bohr.
const freeCell = `
     bravais-lattice index     =            0
     lattice parameter (alat)  =      10.0000  a.u.
     unit-cell volume          =    1000.0000 (a.u.)^3
     number of atoms/cell      =            1
     number of atomic types    =            1

     crystal axes: (cart. coord. in units of alat)
               a(1) = (   1.000000   0.000000   0.000000 )
               a(2) = (   0.000000   1.000000   0.000000 )
               a(3) = (   0.000000   0.000000   1.000000 )

     atomic species   valence    mass     pseudopotential
        H              1.00     1.00800     H ( 1.00)
`

const tauH = `
     Cartesian axes

     site n.     atom                  positions (alat units)
         1           H   tau(   1) = (   0.1000000   0.2000000   0.3000000  )
`

const energyH = `
!    total energy              =      -1.00000000 Ry
`

func TestSegments(Te *testing.T) {
	run := freeCell + tauH + energyH
	log := "batch queue banner\n" + ProgramMarker + run + ProgramMarker + run
	segments := Segments(log)
	if len(segments) != 2 {
		Te.Fatalf("want 2 segments, got %d", len(segments))
	}
	for i, v := range segments {
		snaps, err := ParseSegment(v)
		if err != nil {
			Te.Error(err)
		}
		if len(snaps) != 1 {
			Te.Errorf("segment %d: want 1 snapshot, got %d", i, len(snaps))
		}
	}
	if len(Segments("no calculations in here\nat all\n")) != 0 {
		Te.Error("a markerless text should yield no segments")
	}
}

func TestIdentityCell(Te *testing.T) {
	fmt.Println("identity cell test!")
	snaps, err := ParseSegment(freeCell + tauH + energyH)
	if err != nil {
		Te.Fatal(err)
	}
	if len(snaps) != 1 {
		Te.Fatalf("want 1 snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	alatA := 10.0 * chem.Bohr2A
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 5.29177 //10 bohr, in A
			}
			if math.Abs(s.Cell.At(i, j)-want) > 1e-4 {
				Te.Errorf("cell(%d,%d)= %f, want %f", i, j, s.Cell.At(i, j), want)
			}
		}
	}
	wantpos := []float64{0.1 * alatA, 0.2 * alatA, 0.3 * alatA}
	for j, v := range wantpos {
		if math.Abs(s.Coords.At(0, j)-v) > 1e-8 {
			Te.Errorf("coordinate %d= %f, want %f", j, s.Coords.At(0, j), v)
		}
	}
	at := s.Atom(0)
	if at.Name != "H" || at.Symbol != "H" {
		Te.Errorf("got atom %s/%s, want H/H", at.Name, at.Symbol)
	}
	if math.Abs(at.Mass-1.008) > 1e-4 {
		Te.Errorf("mass %f, want the species table one", at.Mass)
	}
	if !s.HasEnergy() || math.Abs(s.Energy-(-1.0*Ry2eV)) > 1e-10 {
		Te.Errorf("energy %f, want %f", s.Energy, -1.0*Ry2eV)
	}
	fmt.Println("identity cell over!", s.Symbols(), s.Energy)
}

func TestCellErrors(Te *testing.T) {
	wrongibrav := strings.Replace(freeCell, "=            0", "=            2", 1)
	_, err := ParseSegment(wrongibrav + tauH)
	if err == nil || !IsUnsupportedCell(err) {
		Te.Errorf("ibrav=2 should be an unsupported cell, got: %v", err)
	}
	duplicated := freeCell + "\n     bravais-lattice index     =            0\n" + tauH
	_, err = ParseSegment(duplicated)
	if err == nil || !IsUnsupportedCell(err) {
		Te.Errorf("a repeated cell print should be an unsupported cell, got: %v", err)
	}
	missing := strings.Replace(freeCell, "bravais-lattice index", "bravais lattice index", 1)
	_, err = ParseSegment(missing + tauH)
	if err == nil || !IsUnsupportedCell(err) {
		Te.Errorf("a missing bravais line should be an unsupported cell, got: %v", err)
	}
	garbagealat := strings.Replace(freeCell, "10.0000  a.u.", "ten  a.u.", 1)
	_, err = ParseSegment(garbagealat + tauH)
	if err == nil || !IsMalformedLog(err) {
		Te.Errorf("an unparseable alat should be a malformed log, got: %v", err)
	}
	garbageibrav := strings.Replace(freeCell, "=            0", "=            zero", 1)
	_, err = ParseSegment(garbageibrav + tauH)
	if err == nil || !IsMalformedLog(err) {
		Te.Errorf("an unparseable ibrav should be a malformed log, got: %v", err)
	}
	truncated := strings.Replace(freeCell, "atoms/cell      =            1", "atoms/cell      =            2", 1)
	_, err = ParseSegment(truncated + tauH)
	if err == nil || !IsMalformedLog(err) {
		Te.Errorf("a block smaller than atoms/cell should be a malformed log, got: %v", err)
	}
}

//The 3 ATOMIC_POSITIONS unit variants, against the same geometry read
//from the tau table.
func TestPositionUnits(Te *testing.T) {
	cards := `
ATOMIC_POSITIONS (angstrom)
H        1.000000000   2.000000000   3.000000000

ATOMIC_POSITIONS (bohr)
H        1.000000000   2.000000000   3.000000000

ATOMIC_POSITIONS (alat)
H        0.100000000   0.200000000   0.300000000
`
	snaps, err := ParseSegment(freeCell + cards)
	if err != nil {
		Te.Fatal(err)
	}
	if len(snaps) != 3 {
		Te.Fatalf("want 3 snapshots, got %d", len(snaps))
	}
	alatA := 10.0 * chem.Bohr2A
	wants := [][]float64{
		{1, 2, 3},
		{1 * chem.Bohr2A, 2 * chem.Bohr2A, 3 * chem.Bohr2A},
		{0.1 * alatA, 0.2 * alatA, 0.3 * alatA},
	}
	for i, want := range wants {
		for j, v := range want {
			if math.Abs(snaps[i].Coords.At(0, j)-v) > 1e-8 {
				Te.Errorf("snapshot %d coordinate %d= %f, want %f", i, j, snaps[i].Coords.At(0, j), v)
			}
		}
	}
	if snaps[0].HasEnergy() {
		Te.Error("no energy was printed, the snapshot should have none")
	}
}

func TestFractional(Te *testing.T) {
	seg := `
     bravais-lattice index     =            0
     lattice parameter (alat)  =      10.0000  a.u.
     number of atoms/cell      =            2

     crystal axes: (cart. coord. in units of alat)
               a(1) = (   1.000000   0.000000   0.000000 )
               a(2) = (   0.000000   2.000000   0.000000 )
               a(3) = (   0.000000   0.000000   3.000000 )

ATOMIC_POSITIONS (crystal)
Si1      0.000000000   0.000000000   0.000000000
Si2      0.500000000   0.500000000   0.500000000

ATOMIC_POSITIONS (crystal)
Si1      0.100000000   0.000000000   0.000000000
Si2      0.500000000   0.500000000   0.500000000
`
	snaps, err := ParseSegment(seg)
	if err != nil {
		Te.Fatal(err)
	}
	if len(snaps) != 2 {
		Te.Fatalf("want 2 snapshots, got %d", len(snaps))
	}
	alatA := 10.0 * chem.Bohr2A
	//(1/2,1/2,1/2) of a diag(1,2,3) cell
	want := []float64{0.5 * alatA, 1.0 * alatA, 1.5 * alatA}
	for j, v := range want {
		if math.Abs(snaps[0].Coords.At(1, j)-v) > 1e-8 {
			Te.Errorf("fractional coordinate %d= %f, want %f", j, snaps[0].Coords.At(1, j), v)
		}
	}
	at := snaps[0].Atom(1)
	if at.Name != "Si2" || at.Symbol != "Si" {
		Te.Errorf("got atom %s/%s, want Si2/Si", at.Name, at.Symbol)
	}
	//no species table in this segment, the mass comes from the symbol
	if at.Mass != symbolMass["Si"] {
		Te.Errorf("mass %f, want the tabulated one", at.Mass)
	}
	//now the snapshot selection rules
	s, err := SelectSnapshot(snaps, -1)
	if err != nil || s != snaps[1] {
		Te.Error("-1 should select the last snapshot")
	}
	s, err = SelectSnapshot(snaps, 0)
	if err != nil || s != snaps[0] {
		Te.Error("0 should select the first snapshot")
	}
	s, err = SelectSnapshot(snaps, -2)
	if err != nil || s != snaps[0] {
		Te.Error("-2 should select the first snapshot")
	}
	if _, err = SelectSnapshot(snaps, 2); err == nil || !IsMalformedLog(err) {
		Te.Errorf("out of range selection should fail, got: %v", err)
	}
	if _, err = SelectSnapshot(snaps, -3); err == nil {
		Te.Error("out of range negative selection should fail")
	}
	if _, err = SelectSnapshot(nil, -1); err == nil {
		Te.Error("selecting from an empty run should fail")
	}
}

//Whatever comes after "Begin final coordinates" is a reprint of the
//last geometry, never a new snapshot.
func TestFinalCoordinates(Te *testing.T) {
	seg := freeCell + tauH + energyH + "\nBegin final coordinates\n" + tauH
	snaps, err := ParseSegment(seg)
	if err != nil {
		Te.Fatal(err)
	}
	if len(snaps) != 1 {
		Te.Errorf("want 1 snapshot, the reprint is not a new one, got %d", len(snaps))
	}
	if !snaps[0].HasEnergy() {
		Te.Error("the energy printed before the reprint should have been kept")
	}
}

func TestRead(Te *testing.T) {
	log := ProgramMarker + freeCell + tauH + energyH
	segments, err := Read(strings.NewReader(log))
	if err != nil {
		Te.Fatal(err)
	}
	if len(segments) != 1 || len(segments[0]) != 1 {
		Te.Errorf("want 1 calculation with 1 snapshot, got %d", len(segments))
	}
}
