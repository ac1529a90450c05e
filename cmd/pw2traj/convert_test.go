package main

import (
	"math"
	"path/filepath"
	"testing"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
	pw "github.com/rmera/gopw"
	"github.com/rmera/gopw/traj"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		output string
		want   string
	}{
		{"derive from log", "run.log", "", "run.traj"},
		{"derive without extension", "run", "", "run.traj"},
		{"derive keeps the directory", "calc/run.relax.out", "", "calc/run.relax.traj"},
		{"explicit plain name", "run.log", "foo", "foo.traj"},
		{"explicit with suffix", "run.log", "foo.traj", "foo.traj"},
		{"suffix check ignores case", "run.log", "FOO.TRAJ", "FOO.TRAJ"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := OutputPath(c.input, c.output); got != c.want {
				t.Errorf("OutputPath(%q, %q) = %q, want %q", c.input, c.output, got, c.want)
			}
		})
	}
}

func snapshotOf(symbols ...string) *pw.Snapshot {
	s := &pw.Snapshot{}
	for i, sym := range symbols {
		at := new(chem.Atom)
		at.Name = sym
		at.Symbol = sym
		at.ID = i + 1
		s.Atoms = append(s.Atoms, at)
	}
	return s
}

func TestComposition(t *testing.T) {
	cases := []struct {
		name    string
		symbols []string
		want    string
	}{
		{"single atom", []string{"H"}, "H"},
		{"repeated element", []string{"Si", "Si"}, "Si2"},
		{"grouped by first appearance", []string{"Si", "O", "Si", "O", "O", "O"}, "Si2O4"},
		{"count of one is implicit", []string{"C", "C", "O"}, "C2O"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := composition(snapshotOf(c.symbols...)); got != c.want {
				t.Errorf("composition(%v) = %q, want %q", c.symbols, got, c.want)
			}
		})
	}
}

//readBack counts the frames in a trajectory of natoms atoms and returns
//the energy of the first one.
func readBack(t *testing.T, name string, natoms int) (int, float64) {
	t.Helper()
	r, _, err := traj.New(name)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != natoms {
		t.Fatalf("trajectory of %d atoms, want %d", r.Len(), natoms)
	}
	read := v3.Zeros(natoms)
	frames := 0
	first := math.NaN()
	for {
		err := r.Next(read)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			t.Fatal(err)
		}
		if frames == 0 {
			first = r.FrameEnergy()
		}
		frames++
	}
	return frames, first
}

func TestRunConvert(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join("..", "..", "testdata", "si.out")
	//the default takes the last structure of each calculation
	out := filepath.Join(dir, "si")
	opts := &ConvertOptions{Output: out, Index: -1, Compress: "zstd", Prec: 3}
	if err := runConvert(input, opts); err != nil {
		t.Fatal(err)
	}
	frames, first := readBack(t, out+".traj", 2)
	if frames != 2 {
		t.Errorf("want one structure per calculation, got %d", frames)
	}
	if math.Abs(first-(-22.83887007*pw.Ry2eV)) > 1e-6 {
		t.Errorf("first frame energy %f, want the scf one", first)
	}
	//--all writes every structure of every calculation
	allout := filepath.Join(dir, "all")
	opts = &ConvertOptions{Output: allout, All: true, Compress: "zstd", Prec: 3}
	if err := runConvert(input, opts); err != nil {
		t.Fatal(err)
	}
	if frames, _ := readBack(t, allout+".traj", 2); frames != 4 {
		t.Errorf("want 4 structures in total, got %d", frames)
	}
	//converting again must append, not truncate
	if err := runConvert(input, &ConvertOptions{Output: out, Index: -1, Compress: "zstd", Prec: 3}); err != nil {
		t.Fatal(err)
	}
	if frames, _ := readBack(t, out+".traj", 2); frames != 4 {
		t.Errorf("want 4 structures after the second conversion, got %d", frames)
	}
	//an out of range selection reports which calculation is short
	if err := runConvert(input, &ConvertOptions{Output: filepath.Join(dir, "x"), Index: 7, Compress: "zstd", Prec: 3}); err == nil {
		t.Error("an out of range index should fail the conversion")
	}
}
