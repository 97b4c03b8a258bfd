package wiggvm

import (
	"context"
)

const contextCheckInterval = 256

// Step executes one instruction.
// A fault halts the machine; later calls return the same fault.
func (m *Machine) Step() error {
	if m.Fault != nil {
		return m.Fault
	}
	if m.Halted() {
		return ErrHalted
	}

	start := m.IP
	if int(start) >= len(m.Code) {
		return m.fault(start, 0, ErrCodeOverrun)
	}
	op := OpCode(m.Code[start])
	info, ok := op.Info()
	if !ok {
		return m.fault(start, op, ErrBadOpcode)
	}
	end := int(start) + 1 + info.Operands.Size()
	if end > len(m.Code) {
		return m.fault(start, op, ErrCodeOverrun)
	}
	imm := m.Code[start+1 : end]
	m.IP = uint16(end)
	m.Steps++

	if err := m.exec(op, imm); err != nil {
		return m.fault(start, op, err)
	}
	return nil
}

func (m *Machine) fault(ip uint16, op OpCode, err error) error {
	m.Fault = &Fault{
		IP:     ip,
		Op:     op,
		Reason: reasonOf(err),
	}
	return m.Fault
}

func (m *Machine) exec(op OpCode, imm []byte) error {
	switch op {

	case OpLit:
		return m.push(word(imm))

	case OpRes:
		for range imm[0] {
			if err := m.push(0); err != nil {
				return err
			}
		}

	case OpLoad:
		p, err := m.slot(int8(imm[0]))
		if err != nil {
			return err
		}
		return m.push(*p)

	case OpStore:
		v, err := m.pop()
		if err != nil {
			return err
		}
		p, err := m.slot(int8(imm[0]))
		if err != nil {
			return err
		}
		*p = v

	case OpDec, OpInc, OpShr:
		p, err := m.top()
		if err != nil {
			return err
		}
		switch op {
		case OpDec:
			*p--
		case OpInc:
			*p++
		case OpShr:
			*p >>= 1
		}

	case OpJnz:
		p, err := m.top()
		if err != nil {
			return err
		}
		if *p != 0 {
			m.IP = word(imm)
		}

	case OpPop:
		_, err := m.pop()
		return err

	case OpPopN:
		for range imm[0] {
			if _, err := m.pop(); err != nil {
				return err
			}
		}

	case OpDup:
		p, err := m.top()
		if err != nil {
			return err
		}
		return m.push(*p)

	case OpWait:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.hardware.Wait(v)

	case OpSetOutput:
		m.hardware.SetDirection(imm[0], Output)

	case OpSetInput:
		m.hardware.SetDirection(imm[0], Input)

	case OpSetBit:
		bit := imm[0]
		if bit > 15 {
			return ErrBadOperand
		}
		v, err := m.pop()
		if err != nil {
			return err
		}
		p, err := m.slot(int8(imm[1]))
		if err != nil {
			return err
		}
		if v != 0 {
			*p |= 1 << bit
		} else {
			*p &^= 1 << bit
		}

	case OpClrBit:
		bit := imm[0]
		if bit > 15 {
			return ErrBadOperand
		}
		p, err := m.slot(int8(imm[1]))
		if err != nil {
			return err
		}
		*p &^= 1 << bit

	case OpGetBit:
		bit := imm[0]
		if bit > 15 {
			return ErrBadOperand
		}
		p, err := m.top()
		if err != nil {
			return err
		}
		*p = (*p >> bit) & 1

	case OpCall:
		if err := m.push(uint16(m.BP)); err != nil {
			return err
		}
		if err := m.push(m.IP); err != nil {
			return err
		}
		m.BP = m.SP
		m.IP = word(imm)

	case OpRet:
		ip, err := m.pop()
		if err != nil {
			return err
		}
		bp, err := m.pop()
		if err != nil {
			return err
		}
		m.IP = ip
		m.BP = uint8(bp)

	case OpRx16:
		return m.push(m.hardware.Receive(16))

	case OpRx8:
		return m.push(m.hardware.Receive(8) & 0xff)

	case OpTx16, OpTx8:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if op == OpTx8 {
			m.hardware.Transmit(8, v&0xff)
		} else {
			m.hardware.Transmit(16, v)
		}

	case OpSetPin:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.hardware.SetPin(imm[0], v)

	case OpGetPin:
		return m.push(m.hardware.GetPin(imm[0]))

	default:
		return ErrBadOpcode
	}

	return nil
}

// Invoke prepares a call to the procedure at entry as if from a CALL
// instruction whose return address is HaltAddress.
// The caller pops nothing; Return collects the result.
// A call still running must return before another is invoked.
func (m *Machine) Invoke(entry uint16, args ...uint16) error {
	if m.Fault != nil {
		return m.Fault
	}
	if m.Pending != nil && !m.Halted() {
		return ErrNotReturned
	}
	if m.Depth()+len(args)+3 > StackSize {
		return ErrStackOverflow
	}
	m.push(0) // result
	for _, arg := range args {
		m.push(arg)
	}
	m.push(uint16(m.BP))
	m.push(HaltAddress)
	m.BP = m.SP
	m.IP = entry
	m.Pending = &HostCall{
		Entry: entry,
		Args:  len(args),
	}
	return nil
}

// Run steps until the machine halts, faults, the context is done, or
// maxSteps instructions have executed. Zero maxSteps means unlimited.
func (m *Machine) Run(ctx context.Context, maxSteps uint64) error {
	for n := uint64(0); ; n++ {
		if maxSteps > 0 && n >= maxSteps {
			return ErrStepLimit
		}
		if n%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := m.Step(); err != nil {
			if err == ErrHalted {
				return nil
			}
			return err
		}
	}
}

// Return pops the arguments and the result of a finished Invoke.
func (m *Machine) Return() (uint16, error) {
	if m.Fault != nil {
		return 0, m.Fault
	}
	if m.Pending == nil || !m.Halted() {
		return 0, ErrNotReturned
	}
	for range m.Pending.Args {
		if _, err := m.pop(); err != nil {
			return 0, err
		}
	}
	ret, err := m.pop()
	if err != nil {
		return 0, err
	}
	m.Pending = nil
	return ret, nil
}

// Call invokes the procedure at entry, runs it to completion and returns its result.
func (m *Machine) Call(ctx context.Context, entry uint16, maxSteps uint64, args ...uint16) (uint16, error) {
	if err := m.Invoke(entry, args...); err != nil {
		return 0, err
	}
	if err := m.Run(ctx, maxSteps); err != nil {
		return 0, err
	}
	return m.Return()
}
