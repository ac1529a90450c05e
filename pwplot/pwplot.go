/*
 * pwplot.go, part of gopw
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

//Package pwplot draws convergence plots for parsed pw.x runs.
package pwplot

import (
	"fmt"
	"math"

	pw "github.com/rmera/gopw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//basicPlot sets up the frame every plot of the package shares.
func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//Energies extracts the per-snapshot total energies of a run, in order,
//NaNs included for the snapshots whose energy the log never printed.
func Energies(snaps []*pw.Snapshot) []float64 {
	ret := make([]float64, len(snaps))
	for i, s := range snaps {
		ret[i] = s.Energy
	}
	return ret
}

//EnergyPlot produces a plot, in png format, of the total energy (eV)
//along the steps of a run. NaN entries are skipped. The .png extension
//is appended to plotname. Returns an error or nil.
func EnergyPlot(energies []float64, title, plotname string) error {
	if energies == nil {
		return fmt.Errorf("EnergyPlot: given nil energies")
	}
	pts := make(plotter.XYs, 0, len(energies))
	for i, e := range energies {
		if math.IsNaN(e) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: e})
	}
	if len(pts) == 0 {
		return fmt.Errorf("EnergyPlot: no energies to plot")
	}
	p := basicPlot(title, "step", "total energy (eV)")
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("EnergyPlot: %s", err.Error())
	}
	p.Add(l, s)
	filename := fmt.Sprintf("%s.png", plotname)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("EnergyPlot: %s", err.Error())
	}
	return nil
}

//SegmentEnergyPlot is EnergyPlot over the snapshots of several
//segments run after run, the way restarted calculations are read.
func SegmentEnergyPlot(segments [][]*pw.Snapshot, title, plotname string) error {
	var energies []float64
	for _, snaps := range segments {
		energies = append(energies, Energies(snaps)...)
	}
	return EnergyPlot(energies, title, plotname)
}
