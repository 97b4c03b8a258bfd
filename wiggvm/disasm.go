package wiggvm

import (
	"fmt"
	"io"
	"iter"
)

type Instruction struct {
	Op   OpCode
	Text string
	Size int
}

// Disassemble decodes the instruction at code[0].
// Unknown opcodes decode as a placeholder of size 1; a truncated instruction
// consumes the remaining bytes.
func Disassemble(code []byte) (string, int) {
	if len(code) == 0 {
		return "", 0
	}

	op := OpCode(code[0])
	info, ok := op.Info()
	if !ok {
		return fmt.Sprintf("??? 0x%02x", code[0]), 1
	}

	size := 1 + info.Operands.Size()
	if len(code) < size {
		return info.Name + " <truncated>", len(code)
	}
	imm := code[1:size]

	switch info.Operands {
	case OperandsByte:
		return fmt.Sprintf("%s %d", info.Name, imm[0]), size
	case OperandsSlot:
		return fmt.Sprintf("%s %s", info.Name, slotString(int8(imm[0]))), size
	case OperandsWord:
		return fmt.Sprintf("%s %d", info.Name, word(imm)), size
	case OperandsAddress:
		return fmt.Sprintf("%s @%d", info.Name, word(imm)), size
	case OperandsBitSlot:
		return fmt.Sprintf("%s %d %s", info.Name, imm[0], slotString(int8(imm[1]))), size
	}
	return info.Name, size
}

func slotString(offset int8) string {
	if offset < 0 {
		return fmt.Sprintf("[bp-%d]", -int(offset))
	}
	return fmt.Sprintf("[bp+%d]", offset)
}

// Decode yields every instruction of code with its address.
func Decode(code []byte) iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for addr := 0; addr < len(code); {
			text, size := Disassemble(code[addr:])
			if !yield(addr, Instruction{
				Op:   OpCode(code[addr]),
				Text: text,
				Size: size,
			}) {
				return
			}
			addr += size
		}
	}
}

// Listing writes one line per instruction, preceded by labels at their addresses.
func Listing(w io.Writer, code []byte, labels map[uint16]string) error {
	for addr, inst := range Decode(code) {
		if label, ok := labels[uint16(addr)]; ok {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%04d  %s\n", addr, inst.Text); err != nil {
			return err
		}
	}
	return nil
}
