package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"go.coder.com/cli"
	"golang.org/x/term"

	"github.com/erinpentecost/ddsconvert/internal/backend"
	"github.com/erinpentecost/ddsconvert/internal/batch"
	"github.com/erinpentecost/ddsconvert/internal/config"
	"github.com/erinpentecost/ddsconvert/internal/fileutil"
	"github.com/erinpentecost/ddsconvert/internal/logging"
)

type convertCmd struct {
	mode        string
	out         string
	configPath  string
	logLevel    string
	logFormat   string
	noRecursive bool
}

func (c *convertCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "convert",
		Usage: "[flags] <file-or-dir>...",
		Desc:  "Convert files, or every matching file under directories, into timestamped output folders.",
	}
}

func (c *convertCmd) RegisterFlags(fl *pflag.FlagSet) {
	fl.StringVarP(&c.mode, "mode", "m", "", "png_to_dds, dds_to_png or auto (default from config: auto)")
	fl.StringVarP(&c.out, "out", "o", "", "base output directory (default from config: ./converted)")
	fl.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	fl.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	fl.StringVar(&c.logFormat, "log-format", "", "text or json")
	fl.BoolVar(&c.noRecursive, "no-recursive", false, "do not descend into subdirectories")
}

func (c *convertCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() == 0 {
		fl.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := c.loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fatalf("%v", err)
	}

	res, err := runConvert(ctx, cfg, logger, fl.Args(), os.Stdout, isTerminal(os.Stdout))
	if err != nil {
		fatalf("%v", err)
	}
	if !res.OK() {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides on top.
func (c *convertCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.mode != "" {
		cfg.Mode = c.mode
	}
	if c.out != "" {
		if cfg.OutputDir, err = config.ExpandPath(c.out); err != nil {
			return nil, fmt.Errorf("--out: %w", err)
		}
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if c.noRecursive {
		cfg.Recursive = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runConvert expands inputs, runs one batch and writes progress and the final
// report to w. The error is only for a batch that could not start.
func runConvert(ctx context.Context, cfg *config.Config, logger *slog.Logger, inputs []string, w io.Writer, tty bool) (batch.Result, error) {
	mode, err := batch.ParseMode(cfg.Mode)
	if err != nil {
		return batch.Result{}, err
	}
	chains, err := backend.BuildChains(cfg.Chains(), cfg.BackendOptions(logger))
	if err != nil {
		return batch.Result{}, err
	}
	files, err := fileutil.ExpandInputs(inputs, mode.SourceExts(), cfg.Recursive)
	if err != nil {
		return batch.Result{}, err
	}
	if len(files) == 0 {
		return batch.Result{}, errors.New("no input files found")
	}

	orch := batch.New(backend.NewSelector(chains, logger), batch.Options{
		Logger:          logger,
		TimestampLayout: cfg.TimestampFormat,
	})
	events, err := orch.Start(ctx, batch.Request{
		Files:     files,
		Mode:      mode,
		OutputDir: cfg.OutputDir,
	})
	if err != nil {
		return batch.Result{}, err
	}

	var res batch.Result
	for e := range events {
		switch e := e.(type) {
		case batch.Progress:
			printProgress(w, e, tty)
		case batch.Complete:
			if tty {
				fmt.Fprintln(w)
			}
			res = e.Result
		}
	}
	printReport(w, res)
	return res, nil
}

func printProgress(w io.Writer, p batch.Progress, tty bool) {
	if tty {
		// rewrite one line in place
		fmt.Fprintf(w, "\r[%d/%d] %s\x1b[K", p.Index+1, p.Total, p.Message)
		return
	}
	fmt.Fprintf(w, "[%d/%d] %s\n", p.Index+1, p.Total, p.Message)
}

func printReport(w io.Writer, res batch.Result) {
	switch {
	case res.OK():
		fmt.Fprintf(w, "Converted %d files -> %s\n", res.Total, res.OutputDir)
	case res.Cancelled:
		fmt.Fprintf(w, "Cancelled: converted %d/%d\n", res.Succeeded, res.Total)
	default:
		fmt.Fprintf(w, "Completed with errors: %d/%d\n", res.Succeeded, res.Total)
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(w, "Failed: %d\n", len(res.Failures))
		tw := newTable(table.Row{"#", "File", "Error"}, 1)
		for i, f := range res.Failures {
			tw.AppendRow(table.Row{i + 1, filepath.Base(f.Path), f.Message})
		}
		fmt.Fprintln(w, tw.Render())
		fmt.Fprintf(w, "Output: %s\n", res.OutputDir)
	}
	fmt.Fprintf(w, "Batch %s took %s\n", res.BatchID, res.Duration.Round(time.Millisecond))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
