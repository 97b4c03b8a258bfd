package debugs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/reusee/wiggler/logs"
	"github.com/reusee/wiggler/wiggvm"
)

// Debugger single-steps a machine under interactive commands.
type Debugger struct {
	Machine     *wiggvm.Machine
	Labels      map[uint16]string
	Breakpoints map[uint16]bool
	MaxSteps    uint64
	Out         io.Writer
	Tap         Tap
}

func NewDebugger(m *wiggvm.Machine, labels map[uint16]string, out io.Writer) *Debugger {
	return &Debugger{
		Machine:     m,
		Labels:      labels,
		Breakpoints: make(map[uint16]bool),
		Out:         out,
	}
}

const debuggerHelp = `s [N]   step N instructions
c       continue to breakpoint, halt or fault
b ADDR  toggle breakpoint
r       registers
x       stack
l       current instruction
tap     inspect machine in a starlark repl
q       quit`

// Exec runs one command line and reports whether the session should end.
func (d *Debugger) Exec(ctx context.Context, input string) (quit bool, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		fields = []string{"s"}
	}

	switch fields[0] {

	case "s", "step":
		n := 1
		if len(fields) > 1 {
			n, err = strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return false, fmt.Errorf("bad step count: %s", fields[1])
			}
		}
		for range n {
			if !d.step() {
				break
			}
		}
		d.where()

	case "c", "continue":
		for i := uint64(0); d.MaxSteps == 0 || i < d.MaxSteps; i++ {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			if !d.step() {
				break
			}
			if d.Breakpoints[d.Machine.IP] {
				fmt.Fprintf(d.Out, "breakpoint %04d\n", d.Machine.IP)
				break
			}
		}
		d.where()

	case "b", "break":
		if len(fields) < 2 {
			return false, errors.New("breakpoint address required")
		}
		addr, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return false, fmt.Errorf("bad address: %s", fields[1])
		}
		if d.Breakpoints[uint16(addr)] {
			delete(d.Breakpoints, uint16(addr))
			fmt.Fprintf(d.Out, "breakpoint %04d cleared\n", addr)
		} else {
			d.Breakpoints[uint16(addr)] = true
			fmt.Fprintf(d.Out, "breakpoint %04d set\n", addr)
		}

	case "r", "regs":
		m := d.Machine
		fmt.Fprintf(d.Out, "ip=%04d sp=%d bp=%d depth=%d steps=%d\n", m.IP, m.SP, m.BP, m.Depth(), m.Steps)

	case "x", "stack":
		m := d.Machine
		for i, v := range m.Words() {
			marker := ""
			if i == int(m.BP) {
				marker = " <- bp"
			}
			fmt.Fprintf(d.Out, "%3d  %d%s\n", i, v, marker)
		}

	case "l", "list":
		d.where()

	case "tap":
		if d.Tap == nil {
			return false, errors.New("tap not available")
		}
		d.Tap(ctx, "machine", MachineGlobals(d.Machine, d.Labels))

	case "h", "help":
		fmt.Fprintln(d.Out, debuggerHelp)

	case "q", "quit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s", fields[0])
	}

	return false, nil
}

// step reports whether the machine can continue.
func (d *Debugger) step() bool {
	err := d.Machine.Step()
	if err == nil {
		return true
	}
	if errors.Is(err, wiggvm.ErrHalted) {
		fmt.Fprintln(d.Out, "halted")
	} else {
		fmt.Fprintln(d.Out, err)
	}
	return false
}

func (d *Debugger) where() {
	m := d.Machine
	if m.Halted() || int(m.IP) >= len(m.Code) {
		return
	}
	if label, ok := d.Labels[m.IP]; ok {
		fmt.Fprintf(d.Out, "%s:\n", label)
	}
	text, _ := wiggvm.Disassemble(m.Code[m.IP:])
	fmt.Fprintf(d.Out, "%04d  %s\n", m.IP, text)
}

type Debug func(ctx context.Context, d *Debugger) error

func (Module) Debug(
	logger logs.Logger,
	tap Tap,
) Debug {
	return func(ctx context.Context, d *Debugger) error {
		if d.Tap == nil {
			d.Tap = tap
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		logger.InfoContext(ctx, "debugger start")
		defer func() {
			logger.InfoContext(ctx, "debugger end", "steps", d.Machine.Steps)
		}()

		d.where()
		for {
			input, err := line.Prompt("(wiggler) ")
			if err != nil {
				switch err {
				case io.EOF, liner.ErrPromptAborted:
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input != "" {
				line.AppendHistory(input)
			}
			quit, err := d.Exec(ctx, input)
			if err != nil {
				fmt.Fprintln(d.Out, err)
				continue
			}
			if quit {
				return nil
			}
		}
	}
}
