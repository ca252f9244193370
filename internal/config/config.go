// Package config holds the tool options: the operating mode and the
// recording parameters. Options come from key=value option strings, with
// environment variables supplying defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// Mode selects forward propagation or tape recording.
type Mode int

const (
	Forward Mode = iota
	Reverse
)

func (m Mode) String() string {
	if m == Reverse {
		return "reverse"
	}
	return "forward"
}

// Options is the full option surface.
type Options struct {
	Mode Mode

	// RecordDir enables reverse mode and names the directory receiving
	// tape.dat, inputs.dat and outputs.dat.
	RecordDir string

	// RecordValues additionally writes values.dat with one primal value per
	// recorded statement.
	RecordValues bool

	// TapeInRAM keeps the tape in memory instead of streaming it to disk.
	TapeInRAM bool

	// RecordStop lists identifiers whose assignment emits a diagnostic.
	RecordStop []tape.Identifier

	// Typegrind marks results of operations without a tape rule as fully
	// active instead of dropping their dependencies.
	Typegrind bool

	// WarnUnwrapped logs operations the forward rule set cannot handle.
	WarnUnwrapped bool

	// SessionLog names an additional log file; empty disables it.
	SessionLog string
}

// Default returns the options with environment defaults applied.
// Every option has a SHADOWGRAD_* variable.
func Default() Options {
	o := Options{
		RecordDir:     env.Str("SHADOWGRAD_RECORD"),
		RecordValues:  env.Bool("SHADOWGRAD_RECORD_VALUES"),
		TapeInRAM:     env.Bool("SHADOWGRAD_TAPE_IN_RAM"),
		Typegrind:     env.Bool("SHADOWGRAD_TYPEGRIND"),
		WarnUnwrapped: env.Bool("SHADOWGRAD_WARN_UNWRAPPED"),
		SessionLog:    env.Str("SHADOWGRAD_LOG"),
	}
	if o.RecordDir != "" {
		o.Mode = Reverse
	}
	return o
}

// Set applies one key=value option string (bare keys mean true).
// Unknown keys are an error.
func (o *Options) Set(arg string) error {
	key, value, hasValue := strings.Cut(arg, "=")
	switch key {
	case "record":
		if !hasValue || value == "" {
			return fmt.Errorf("config: record needs a directory path")
		}
		o.RecordDir = value
		o.Mode = Reverse
	case "record-values":
		b, err := parseBool(key, value, hasValue)
		if err != nil {
			return err
		}
		o.RecordValues = b
	case "tape-in-ram":
		b, err := parseBool(key, value, hasValue)
		if err != nil {
			return err
		}
		o.TapeInRAM = b
	case "typegrind":
		b, err := parseBool(key, value, hasValue)
		if err != nil {
			return err
		}
		o.Typegrind = b
	case "warn-unwrapped":
		b, err := parseBool(key, value, hasValue)
		if err != nil {
			return err
		}
		o.WarnUnwrapped = b
	case "record-stop":
		if !hasValue {
			return fmt.Errorf("config: record-stop needs a comma-separated identifier list")
		}
		ids, err := parseIdentifiers(value)
		if err != nil {
			return err
		}
		o.RecordStop = append(o.RecordStop, ids...)
	case "log":
		if !hasValue || value == "" {
			return fmt.Errorf("config: log needs a file path")
		}
		o.SessionLog = value
	default:
		return fmt.Errorf("config: unknown option %q", key)
	}
	return nil
}

// Validate rejects option combinations that would silently do nothing.
// The recording options only make sense when a tape exists.
func (o *Options) Validate() error {
	if o.Mode == Reverse {
		if o.RecordDir == "" && !o.TapeInRAM {
			return fmt.Errorf("config: reverse mode needs record=<dir> or tape-in-ram")
		}
		return nil
	}
	switch {
	case o.RecordDir != "":
		return fmt.Errorf("config: record requires reverse mode")
	case o.RecordValues:
		return fmt.Errorf("config: record-values requires reverse mode")
	case o.TapeInRAM:
		return fmt.Errorf("config: tape-in-ram requires reverse mode")
	case len(o.RecordStop) > 0:
		return fmt.Errorf("config: record-stop requires reverse mode")
	case o.Typegrind:
		return fmt.Errorf("config: typegrind requires reverse mode")
	}
	return nil
}

func parseBool(key, value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	switch value {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("config: %s: %q is not a boolean", key, value)
	}
	return b, nil
}

func parseIdentifiers(list string) ([]tape.Identifier, error) {
	parts := strings.Split(list, ",")
	ids := make([]tape.Identifier, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("config: %q is not a valid identifier", p)
		}
		ids = append(ids, tape.Identifier(n))
	}
	return ids, nil
}
