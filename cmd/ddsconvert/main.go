package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.coder.com/cli"
)

type rootCmd struct{}

func (r *rootCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "ddsconvert",
		Usage: "[subcommand] [flags]",
		Desc:  "Batch convert images between PNG and DDS.",
	}
}

func (r *rootCmd) Run(fl *pflag.FlagSet) {
	fl.Usage()
	os.Exit(2)
}

func (r *rootCmd) Subcommands() []cli.Command {
	return []cli.Command{
		&convertCmd{},
		&infoCmd{},
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAILED: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	cli.RunRoot(&rootCmd{})
}
