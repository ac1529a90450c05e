/*
 * errors.go, part of gopw.
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

	chem "github.com/rmera/gochem"
)

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//if used with a non-chem.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(chem.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for pw.x log parsing errors. It fullfills chem.Error.
type Error struct {
	message  string
	details  string //free-form context, usually the offending line
	filename string //the log file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	name := err.filename
	if name == "" {
		name = "(stream)"
	}
	if err.details == "" {
		return fmt.Sprintf("pw.x log %s error: %s", name, err.message)
	}
	return fmt.Sprintf("pw.x log %s error: %s: %s", name, err.message, err.details)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	//it should work, since E.deco is a slice, and hence a pointer itself.

	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the log file associated to the failing parse,
//or an empty string if the parser was fed a bare string.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//The errors the parser emits. Anything not covered here (file system
//problems, mostly) is returned as it came from the standard library.
const (
	UnsupportedCellModel = "Unsupported cell model" //anything but exactly one fixed, free (ibrav=0) cell
	MalformedLog         = "Malformed pw.x output"
)

//IsUnsupportedCell returns true if err reports a cell outside the single
//fixed, free (ibrav=0) model the parser supports.
func IsUnsupportedCell(err error) bool {
	pwerr, ok := err.(Error)
	return ok && pwerr.message == UnsupportedCellModel
}

//IsMalformedLog returns true if err reports pw.x output that breaks the
//format assumptions of the parser, a truncated or corrupted log, mostly.
func IsMalformedLog(err error) bool {
	pwerr, ok := err.(Error)
	return ok && pwerr.message == MalformedLog
}
