package wiggvm

import "fmt"

// OpCode values are part of the bytecode format and must not be renumbered.
type OpCode byte

const (
	OpLit       OpCode = iota // n16: push n16
	OpRes                     // n8: push n8 zero words
	OpLoad                    // s8: push stack[BP+s8]
	OpStore                   // s8: stack[BP+s8] = pop
	OpDec                     // TOS--
	OpJnz                     // a16: jump if TOS != 0, TOS kept
	OpPop                     // drop TOS
	OpPopN                    // n8: drop n8 words
	OpDup                     // push TOS
	OpWait                    // pop duration, wait
	OpSetOutput               // n8: pin n8 to output
	OpSetInput                // n8: pin n8 to input
	OpSetBit                  // n8 s8: pop v, bit n8 of stack[BP+s8] = v != 0
	OpClrBit                  // n8 s8: clear bit n8 of stack[BP+s8]
	OpCall                    // a16: push BP, push IP, BP = SP, IP = a16
	OpRet                     // pop IP, pop BP
	OpRx16                    // push 16 received bits
	OpTx16                    // pop, transmit 16 bits
	OpRx8                     // push 8 received bits
	OpTx8                     // pop, transmit 8 bits
	OpInc                     // TOS++
	OpShr                     // TOS >>= 1
	OpSetPin                  // n8: pop, drive pin n8
	OpGetPin                  // n8: push pin n8 level
	OpGetBit                  // n8: TOS = (TOS >> n8) & 1
)

type Operands uint8

const (
	OperandsNone    Operands = iota
	OperandsByte             // unsigned 8-bit immediate
	OperandsSlot             // signed 8-bit BP offset
	OperandsWord             // 16-bit little-endian immediate
	OperandsAddress          // 16-bit little-endian code address
	OperandsBitSlot          // 8-bit bit index, signed 8-bit BP offset
)

// Size is the number of immediate bytes.
func (o Operands) Size() int {
	switch o {
	case OperandsByte, OperandsSlot:
		return 1
	case OperandsWord, OperandsAddress, OperandsBitSlot:
		return 2
	}
	return 0
}

type OpInfo struct {
	Name     string
	Operands Operands
}

var opInfos = [...]OpInfo{
	OpLit:       {"LIT", OperandsWord},
	OpRes:       {"RES", OperandsByte},
	OpLoad:      {"LOAD", OperandsSlot},
	OpStore:     {"STORE", OperandsSlot},
	OpDec:       {"DEC", OperandsNone},
	OpJnz:       {"JNZ", OperandsAddress},
	OpPop:       {"POP", OperandsNone},
	OpPopN:      {"POPN", OperandsByte},
	OpDup:       {"DUP", OperandsNone},
	OpWait:      {"WAIT", OperandsNone},
	OpSetOutput: {"SETOUTPUT", OperandsByte},
	OpSetInput:  {"SETINPUT", OperandsByte},
	OpSetBit:    {"SETBIT", OperandsBitSlot},
	OpClrBit:    {"CLRBIT", OperandsBitSlot},
	OpCall:      {"CALL", OperandsAddress},
	OpRet:       {"RET", OperandsNone},
	OpRx16:      {"RX16", OperandsNone},
	OpTx16:      {"TX16", OperandsNone},
	OpRx8:       {"RX8", OperandsNone},
	OpTx8:       {"TX8", OperandsNone},
	OpInc:       {"INC", OperandsNone},
	OpShr:       {"SHR", OperandsNone},
	OpSetPin:    {"SETPIN", OperandsByte},
	OpGetPin:    {"GETPIN", OperandsByte},
	OpGetBit:    {"GETBIT", OperandsByte},
}

func (o OpCode) Info() (OpInfo, bool) {
	if int(o) < len(opInfos) {
		return opInfos[o], true
	}
	return OpInfo{}, false
}

// Size is the encoded instruction length, 1 for unknown opcodes.
func (o OpCode) Size() int {
	info, ok := o.Info()
	if !ok {
		return 1
	}
	return 1 + info.Operands.Size()
}

func (o OpCode) String() string {
	if info, ok := o.Info(); ok {
		return info.Name
	}
	return fmt.Sprintf("OpCode(%d)", byte(o))
}

func Emit(code []byte, op OpCode) []byte {
	return append(code, byte(op))
}

func EmitByte(code []byte, op OpCode, v uint8) []byte {
	return append(code, byte(op), v)
}

func EmitWord(code []byte, op OpCode, v uint16) []byte {
	return append(code, byte(op), byte(v), byte(v>>8))
}

func EmitBytes(code []byte, op OpCode, v1, v2 uint8) []byte {
	return append(code, byte(op), v1, v2)
}

func word(code []byte) uint16 {
	return uint16(code[0]) | uint16(code[1])<<8
}
