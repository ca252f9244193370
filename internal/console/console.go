// Package console implements the interactive monitor commands: inspecting
// and seeding dot values in forward mode, and marking inputs and reading
// identifiers in reverse mode.
package console

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/session"
	"github.com/shadowgrad/shadowgrad/internal/shadow"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

const helpText = `commands:
  help                       print this help
  get <addr>                 print dot value of the double at addr
  set <addr> <value>         set dot value of the double at addr
  fget <addr>                print dot value of the float at addr
  fset <addr> <value>        set dot value of the float at addr
  lget <addr>                print dot value of the x87 long double at addr
  lset <addr> <value>        set dot value of the x87 long double at addr
  index <addr>               print the index of the variable at addr
  mark <addr>                mark the double at addr as an input variable
  fmark <addr>               mark the float at addr as an input variable
  lmark <addr>               mark the long double at addr as an input variable
  flagsget <addr> <size>     dump size shadow bytes at addr`

// Console executes monitor command lines against a session.
type Console struct {
	s *session.Session
}

func New(s *session.Session) *Console {
	return &Console{s: s}
}

// Execute runs one command line and returns its output. Unknown commands
// and commands unavailable in the current mode are errors.
func (c *Console) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		return helpText, nil
	case "get", "fget", "lget":
		addr, err := parseAddr(args, 1)
		if err != nil {
			return "", err
		}
		return c.getDot(cmd, addr)
	case "set", "fset", "lset":
		addr, err := parseAddr(args, 2)
		if err != nil {
			return "", err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", fmt.Errorf("console: bad value %q", args[1])
		}
		return c.setDot(cmd, addr, value)
	case "index":
		addr, err := parseAddr(args, 1)
		if err != nil {
			return "", err
		}
		if err := c.needMode(config.Reverse, cmd); err != nil {
			return "", err
		}
		id := c.s.Shadow().MemoryIdentifier(addr)
		return fmt.Sprintf("index: %d", uint64(id)), nil
	case "mark", "fmark", "lmark":
		addr, err := parseAddr(args, 1)
		if err != nil {
			return "", err
		}
		return c.mark(cmd, addr)
	case "flagsget":
		addr, err := parseAddr(args, 2)
		if err != nil {
			return "", err
		}
		size, err := strconv.Atoi(args[1])
		if err != nil || size <= 0 {
			return "", fmt.Errorf("console: bad size %q", args[1])
		}
		return c.flags(addr, size), nil
	default:
		return "", fmt.Errorf("console: unknown command %q", cmd)
	}
}

func (c *Console) needMode(m config.Mode, cmd string) error {
	if c.s.Mode() != m {
		return fmt.Errorf("console: %s is only available in %s mode", cmd, m)
	}
	return nil
}

func (c *Console) getDot(cmd string, addr uint64) (string, error) {
	if err := c.needMode(config.Forward, cmd); err != nil {
		return "", err
	}
	sh := c.s.Shadow()
	switch cmd {
	case "get":
		buf := make([]byte, 8)
		sh.GetMemory(addr, buf, nil)
		return formatDot(math.Float64frombits(binary.LittleEndian.Uint64(buf))), nil
	case "fget":
		buf := make([]byte, 4)
		sh.GetMemory(addr, buf, nil)
		return formatDot(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))), nil
	default: // lget
		var buf [10]byte
		sh.GetMemory(addr, buf[:], nil)
		return formatDot(shadow.F80ToF64(buf)), nil
	}
}

func (c *Console) setDot(cmd string, addr uint64, value float64) (string, error) {
	if err := c.needMode(config.Forward, cmd); err != nil {
		return "", err
	}
	sh := c.s.Shadow()
	switch cmd {
	case "set":
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(value))
		sh.SetMemory(addr, buf, nil)
	case "fset":
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(value)))
		sh.SetMemory(addr, buf, nil)
	default: // lset
		buf := shadow.F64ToF80(value)
		sh.SetMemory(addr, buf[:], nil)
	}
	return "", nil
}

func (c *Console) mark(cmd string, addr uint64) (string, error) {
	if err := c.needMode(config.Reverse, cmd); err != nil {
		return "", err
	}
	sh := c.s.Shadow()

	var prev func() tape.Identifier
	var store func(id tape.Identifier)
	switch cmd {
	case "lmark":
		prev = func() tape.Identifier { return sh.ExtendedIdentifier(addr) }
		store = func(id tape.Identifier) { sh.SetExtendedIdentifier(addr, id) }
	default: // mark, fmark: the identifier window is the same for both widths
		prev = func() tape.Identifier { return sh.MemoryIdentifier(addr) }
		store = func(id tape.Identifier) { sh.SetMemoryIdentifier(addr, id) }
	}

	var out strings.Builder
	if p := prev(); p != 0 {
		fmt.Fprintf(&out, "previous index was %d\n", uint64(p))
	}
	// The monitor cannot read application memory, so the value log entry
	// for a marked input is zero.
	id, err := c.s.Engine().RecordUnconditional(0, 0, 0, 0, 0)
	if err != nil {
		return "", err
	}
	store(id)
	fmt.Fprintf(&out, "marked as index %d", uint64(id))
	return out.String(), nil
}

func (c *Console) flags(addr uint64, size int) string {
	lo := make([]byte, size)
	if c.s.Mode() == config.Forward {
		c.s.Shadow().GetMemory(addr, lo, nil)
		return fmt.Sprintf("shadow: % x", lo)
	}
	hi := make([]byte, size)
	c.s.Shadow().GetMemory(addr, lo, hi)
	return fmt.Sprintf("shadow lo: % x\nshadow hi: % x", lo, hi)
}

func parseAddr(args []string, want int) (uint64, error) {
	if len(args) != want {
		return 0, fmt.Errorf("console: expected %d argument(s), got %d", want, len(args))
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("console: bad address %q", args[0])
	}
	return addr, nil
}

func formatDot(v float64) string {
	return fmt.Sprintf("dot value: %g", v)
}
