/*
 * pwplot_test.go, part of gopw
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 * goPW is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
*/

package pwplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	pw "github.com/rmera/gopw"
)

//A run with a missing energy in the middle, the way an aborted SCF
//leaves things, still plots: the NaN entry is skipped, not drawn as 0.
func TestEnergyPlot(Te *testing.T) {
	energies := []float64{-310.1, math.NaN(), -310.8, -310.9}
	name := filepath.Join(Te.TempDir(), "conv")
	if err := EnergyPlot(energies, "relax", name); err != nil {
		Te.Fatal(err)
	}
	info, err := os.Stat(name + ".png")
	if err != nil {
		Te.Fatal(err)
	}
	if info.Size() == 0 {
		Te.Error("the plot file came out empty")
	}
	if err := EnergyPlot(nil, "relax", name); err == nil {
		Te.Error("nil energies should not plot")
	}
	if err := EnergyPlot([]float64{math.NaN(), math.NaN()}, "relax", name); err == nil {
		Te.Error("a run with no printed energies should not plot")
	}
}

func TestSegmentEnergyPlot(Te *testing.T) {
	segments := [][]*pw.Snapshot{
		{{Energy: -310.1}, {Energy: -310.5}},
		{{Energy: -310.9}},
	}
	energies := Energies(segments[0])
	if len(energies) != 2 || energies[1] != -310.5 {
		Te.Errorf("energies of the first run: %v", energies)
	}
	name := filepath.Join(Te.TempDir(), "chained")
	if err := SegmentEnergyPlot(segments, "si.out", name); err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(name + ".png"); err != nil {
		Te.Fatal(err)
	}
}
