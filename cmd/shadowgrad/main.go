// Package main provides the Shadowgrad CLI.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/console"
	"github.com/shadowgrad/shadowgrad/internal/logging"
	"github.com/shadowgrad/shadowgrad/internal/session"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Shadowgrad %s\n", version)
			return
		case "console":
			if err := runConsole(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Shadowgrad - machine-level automatic differentiation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version                 Show version")
	fmt.Println("  console [option...]     Start an interactive monitor session")
	fmt.Println("")
	fmt.Println("Options (key=value):")
	fmt.Println("  record=<dir>            Record a tape into <dir> (reverse mode)")
	fmt.Println("  tape-in-ram             Keep the tape in memory")
	fmt.Println("  record-values           Also record primal values")
	fmt.Println("  record-stop=<ids>       Diagnose assignment of these indices")
	fmt.Println("  typegrind               Mark untracked results fully active")
	fmt.Println("  warn-unwrapped          Warn about unhandled operations")
	fmt.Println("  log=<file>              Also log to <file>")
}

func runConsole(args []string) error {
	opts := config.Default()
	for _, a := range args {
		if err := opts.Set(a); err != nil {
			return err
		}
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(opts.SessionLog)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := session.New(opts, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("session started", "mode", opts.Mode.String())

	c := console.New(s)
	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		line := sc.Text()
		if line == "quit" || line == "exit" {
			break
		}
		out, err := c.Execute(line)
		if err != nil {
			fmt.Println(err)
		} else if out != "" {
			fmt.Println(out)
		}
		fmt.Print("> ")
	}
	return sc.Err()
}
