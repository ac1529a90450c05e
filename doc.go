/*
 * doc.go, part of gopw.
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
 * goPW is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package pw reads the text output of pw.x, the plane-wave SCF program
of the Quantum ESPRESSO suite, and recovers the atomic structures
printed along a calculation.

	**goPW Capabilities**

    Splits a log into per-calculation segments, so files holding
	several restarted or chained runs are handled naturally.

    Reads the unit cell (free-form, ibrav=0 lattices) and the lattice
	parameter, delivering everything in Angstroms.

    Reads every geometry printed along an SCF or relaxation run, both
	the initial site table and the per-step ATOMIC_POSITIONS cards, in
	their crystal, angstrom, bohr and alat variants.

    Reads the converged total energy of each step, in eV.

    Reads the atomic species table, assigning per-atom masses.

    Stops at the final-coordinates reprint, which never produces a
	spurious extra structure.

Structures are delivered as goChem atoms and coordinate matrices, so
everything in the goChem library can be used on them. The traj
subpackage writes and reads them as compressed trajectory files, the
pwplot subpackage plots energy convergence, and cmd/pw2traj does all of
the above from the command line.

The parser takes the printed markers of pw.x as the format contract,
only accepts plain numeric fields (no expressions, no locale variants)
and refuses logs whose cell is repeated, absent or not free-form, since
a changing cell cannot be represented in the fixed-cell trajectories
this library produces.*/
package pw
