/*
 * doc.go, part of gopw.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
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
 * /

//Package traj implements the trajectory container pw2traj produces,
//a close relative of goChem's stf format adapted to fixed-cell,
//append-accumulated periodic trajectories. Files are meant to carry
//the .traj extension.

/******************** Format Specification   ***************************************************


A file contains one or more compressed sections, simply concatenated.
Each writing invocation appends one whole section, so converting several
logs to the same output file accumulates their frames in order. Sections
are compressed with z-standard (the default) or gzip; both codecs define
the concatenation of streams, which is what makes the append mode legal.
Readers tell them apart by the magic bytes of the first section, so a
single file must not mix codecs.

The uncompressed content of a section is ASCII lines. A section starts
with a header of key=value lines (keys and values must not contain
newlines, keys must not contain '='), closed by a line starting with
"**" followed by whitespace and the number of atoms per frame. The
number of atoms must agree between all sections of a file. The "prec"
key is always present and holds a positive integer, the precision.
Writers of this package also record "compress", and, when fed parsed
snapshots, "symbols" and "masses" (space-separated, one entry per atom,
in order) and "energies" with the unit of the per-frame energies.

After the header come the frames. A frame is one line per atom, each
with the 3 cartesian coordinates of the atom as integers: the value in
Angstroms multiplied by 10^prec and rounded. The frame ends with a line
starting with "*", followed either by nothing, or by the 9 components of
the three cell vectors, row-major, in Angstroms, optionally followed by
one more number, the total energy of the frame. An energy may only be
present when the cell is.

The "**" sequence only ever opens the header-closing line.

***************************************************************************************************/

package traj
