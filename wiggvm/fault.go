package wiggvm

import (
	"errors"
	"fmt"
)

var (
	ErrHalted         = errors.New("machine halted")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrCodeTooLarge   = errors.New("program exceeds code memory")
	ErrNotReturned    = errors.New("invoked procedure has not returned")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackRange     = errors.New("frame slot outside the stack")
	ErrCodeOverrun    = errors.New("instruction pointer outside the program")
	ErrBadOpcode      = errors.New("unknown opcode")
	ErrBadOperand     = errors.New("operand out of range")
)

type FaultReason uint8

const (
	FaultNone FaultReason = iota
	FaultStackOverflow
	FaultStackUnderflow
	FaultStackRange
	FaultCodeOverrun
	FaultBadOpcode
	FaultBadOperand
)

var faultErrors = [...]error{
	FaultStackOverflow:  ErrStackOverflow,
	FaultStackUnderflow: ErrStackUnderflow,
	FaultStackRange:     ErrStackRange,
	FaultCodeOverrun:    ErrCodeOverrun,
	FaultBadOpcode:      ErrBadOpcode,
	FaultBadOperand:     ErrBadOperand,
}

func reasonOf(err error) FaultReason {
	for reason, e := range faultErrors {
		if e != nil && errors.Is(err, e) {
			return FaultReason(reason)
		}
	}
	return FaultNone
}

// Fault is fatal: a faulted machine executes nothing until reset.
type Fault struct {
	IP     uint16
	Op     OpCode
	Reason FaultReason
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at %04d (%v): %v", f.IP, f.Op, f.Unwrap())
}

func (f *Fault) Unwrap() error {
	if int(f.Reason) < len(faultErrors) && faultErrors[f.Reason] != nil {
		return faultErrors[f.Reason]
	}
	return errors.New("unknown fault")
}
