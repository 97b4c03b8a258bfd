package debugs

import (
	"github.com/reusee/wiggler/wiggvm"
)

// MachineGlobals exposes machine state and inspection helpers to a Tap.
func MachineGlobals(m *wiggvm.Machine, labels map[uint16]string) map[string]any {
	var fault any
	if m.Fault != nil {
		fault = m.Fault.Error()
	}
	return map[string]any{
		"ip":     m.IP,
		"sp":     m.SP,
		"bp":     m.BP,
		"steps":  m.Steps,
		"stack":  m.Words(),
		"fault":  fault,
		"halted": m.Halted(),
		"labels": labels,
		"disasm": func(addr int) string {
			if addr < 0 || addr >= len(m.Code) {
				return ""
			}
			text, _ := wiggvm.Disassemble(m.Code[addr:])
			return text
		},
		"slot": func(offset int) int {
			idx := int(m.BP) + offset
			if idx < 0 || idx >= m.Depth() {
				return -1
			}
			return int(m.Stack[idx])
		},
	}
}
