package wiggvm

const (
	StackSize = 32
	CodeSize  = 1024

	// EmptySP is the stack pointer of an empty stack; push pre-increments.
	EmptySP = 0xff

	// HaltAddress is the return address planted by Invoke.
	HaltAddress = 0xffff
)

type Machine struct {
	IP      uint16
	SP      uint8
	BP      uint8
	Stack   [StackSize]uint16
	Code    []byte
	Steps   uint64
	Fault   *Fault
	Pending *HostCall

	hardware Hardware
}

// HostCall tracks a procedure invoked from outside the machine.
type HostCall struct {
	Entry uint16
	Args  int
}

func NewMachine(hardware Hardware) *Machine {
	if hardware == nil {
		hardware = NopHardware{}
	}
	m := &Machine{
		hardware: hardware,
	}
	m.Reset()
	return m
}

func (m *Machine) Hardware() Hardware {
	return m.hardware
}

func (m *Machine) SetHardware(hardware Hardware) {
	if hardware == nil {
		hardware = NopHardware{}
	}
	m.hardware = hardware
}

// Reset clears registers and stack. Loaded code is kept.
func (m *Machine) Reset() {
	m.IP = 0
	m.SP = EmptySP
	m.BP = 0
	m.Stack = [StackSize]uint16{}
	m.Steps = 0
	m.Fault = nil
	m.Pending = nil
}

func (m *Machine) Load(code []byte) error {
	if len(code) > CodeSize {
		return ErrCodeTooLarge
	}
	m.Code = append(m.Code[:0], code...)
	m.Reset()
	return nil
}

func (m *Machine) Halted() bool {
	return m.IP == HaltAddress
}

// Depth returns the number of words on the stack.
func (m *Machine) Depth() int {
	if m.SP == EmptySP {
		return 0
	}
	return int(m.SP) + 1
}

// Words returns a copy of the live stack, bottom first.
func (m *Machine) Words() []uint16 {
	ret := make([]uint16, m.Depth())
	copy(ret, m.Stack[:])
	return ret
}

func (m *Machine) push(v uint16) error {
	if m.Depth() >= StackSize {
		return ErrStackOverflow
	}
	m.SP++
	m.Stack[m.SP] = v
	return nil
}

func (m *Machine) pop() (uint16, error) {
	if m.SP == EmptySP {
		return 0, ErrStackUnderflow
	}
	v := m.Stack[m.SP]
	m.SP--
	return v, nil
}

func (m *Machine) top() (*uint16, error) {
	if m.SP == EmptySP {
		return nil, ErrStackUnderflow
	}
	return &m.Stack[m.SP], nil
}

// slot addresses a live stack word relative to BP.
func (m *Machine) slot(offset int8) (*uint16, error) {
	idx := int(m.BP) + int(offset)
	if idx < 0 || idx >= m.Depth() {
		return nil, ErrStackRange
	}
	return &m.Stack[idx], nil
}
