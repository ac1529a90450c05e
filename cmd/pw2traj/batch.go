package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

//BatchJob is one conversion in a batch file.
type BatchJob struct {
	Log    string `toml:"log"`
	Output string `toml:"output"`
	Index  *int   `toml:"index"` //nil means the default, the last structure
	All    bool   `toml:"all"`
	Plot   string `toml:"plot"`
}

//BatchFile is the TOML layout the batch subcommand takes.
type BatchFile struct {
	Workers  int        `toml:"workers"`
	Compress string     `toml:"compress"`
	Prec     int        `toml:"prec"`
	Jobs     []BatchJob `toml:"job"`
}

func newBatchCommand() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <jobs.toml>",
		Short: "Convert several logs in one go",
		Long: `batch reads a TOML file describing conversions and runs them
concurrently. Each [[job]] entry takes a log path plus the options of a
single conversion:

    workers = 4          # optional, defaults to the number of CPUs
    compress = "zstd"    # optional, for every job
    prec = 3             # optional, for every job

    [[job]]
    log = "si.relax.out"
    output = "si"        # optional, derived from log when absent
    index = -1           # optional
    all = false          # optional
    plot = ""            # optional

Failed jobs are reported and the rest keep going. Since outputs are
opened in append mode, jobs sharing an output file must not run
concurrently; set workers = 1 for that arrangement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(args[0], workers)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "how many conversions to run at once, overrides the batch file")
	return cmd
}

func runBatch(path string, workers int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening batch file: %w", err)
	}
	defer f.Close()
	var batch BatchFile
	if err := toml.NewDecoder(f).Decode(&batch); err != nil {
		return fmt.Errorf("reading batch file %s: %w", path, err)
	}
	if len(batch.Jobs) == 0 {
		return fmt.Errorf("batch file %s has no [[job]] entries", path)
	}
	if batch.Compress == "" {
		batch.Compress = "zstd"
	}
	if batch.Prec <= 0 {
		batch.Prec = 3
	}
	if workers <= 0 {
		workers = batch.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	var mu sync.Mutex
	var failures []string
	for _, job := range batch.Jobs {
		job := job
		g.Go(func() error {
			index := -1
			if job.Index != nil {
				index = *job.Index
			}
			opts := &ConvertOptions{
				Output:   job.Output,
				Index:    index,
				All:      job.All,
				Plot:     job.Plot,
				Compress: batch.Compress,
				Prec:     batch.Prec,
			}
			if err := runConvert(job.Log, opts); err != nil {
				log.Printf("batch: %v", err)
				mu.Lock()
				failures = append(failures, job.Log)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d conversions failed: %s", len(failures), len(batch.Jobs), strings.Join(failures, ", "))
	}
	log.Printf("batch: %d conversions done", len(batch.Jobs))
	return nil
}
