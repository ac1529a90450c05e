package pw

import "strings"

//ProgramMarker opens one pw.x calculation inside a log file. A log
//produced by several runs appended to the same file (a common setup in
//queue systems) carries one marker per run.
const ProgramMarker = "Program PWSCF"

//Segments divides the raw text of a pw.x log into per-calculation
//segments, one per occurrence of ProgramMarker, in file order. Whatever
//precedes the first marker (shell banners, queue system chatter) is
//discarded. A text without markers yields an empty slice.
func Segments(log string) []string {
	return strings.Split(log, ProgramMarker)[1:]
}
