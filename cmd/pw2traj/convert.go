package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	pw "github.com/rmera/gopw"
	"github.com/rmera/gopw/pwplot"
	"github.com/rmera/gopw/traj"
)

//ConvertOptions holds the flags of one conversion.
type ConvertOptions struct {
	Output   string
	Index    int
	All      bool
	Plot     string
	Compress string
	Prec     int
}

//OutputPath decides where the trajectory goes. With no explicit output
//the input path keeps its directory and name, with the extension
//replaced by .traj. An explicit output gets .traj appended unless it
//already ends in it, checked case-insensitively.
func OutputPath(input, output string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".traj"
	}
	if !strings.HasSuffix(strings.ToLower(output), ".traj") {
		return output + ".traj"
	}
	return output
}

func runConvert(logpath string, opts *ConvertOptions) error {
	segments, err := pw.FileRead(logpath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", logpath, err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("no pw.x calculations found in %s", logpath)
	}
	//one structure per calculation unless --all asked for everything
	var towrite []*pw.Snapshot
	for k, snaps := range segments {
		if opts.All {
			towrite = append(towrite, snaps...)
			continue
		}
		s, err := pw.SelectSnapshot(snaps, opts.Index)
		if err != nil {
			return fmt.Errorf("calculation %d of %s: %w", k+1, logpath, err)
		}
		towrite = append(towrite, s)
	}
	if len(towrite) == 0 {
		return fmt.Errorf("no structures found in %s", logpath)
	}
	out := OutputPath(logpath, opts.Output)
	header := traj.SnapshotHeader(towrite[0], opts.Prec, opts.Compress)
	w, err := traj.NewWriter(out, towrite[0].Len(), header)
	if err != nil {
		return fmt.Errorf("opening %s: %w", out, err)
	}
	defer w.Close()
	for _, s := range towrite {
		if err := w.WNextSnapshot(s); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	}
	if opts.Plot != "" {
		if err := pwplot.SegmentEnergyPlot(segments, filepath.Base(logpath), opts.Plot); err != nil {
			return fmt.Errorf("plotting %s: %w", logpath, err)
		}
	}
	log.Printf("%s: wrote %d structure(s) to %s", logpath, w.Frames(), out)
	return nil
}
