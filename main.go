package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/clipsync/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	if !args.HasCommand() {
		args.List = &cli.ListCmd{Limit: 20}
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cliHandler.Execute(ctx, &args)
	stop()
	cliHandler.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if verr := args.Validate(); verr != nil {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsage(os.Stderr)
		}
		os.Exit(1)
	}
}
