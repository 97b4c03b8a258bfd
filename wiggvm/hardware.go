package wiggvm

import "sync"

type Direction uint8

const (
	Input Direction = iota + 1
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "unknown"
}

// Hardware is the pin and serial surface the machine drives.
type Hardware interface {
	SetDirection(pin uint8, dir Direction)
	SetPin(pin uint8, value uint16)
	GetPin(pin uint8) uint16
	Wait(duration uint16)
	Transmit(bits int, value uint16)
	Receive(bits int) uint16
}

type NopHardware struct{}

var _ Hardware = NopHardware{}

func (NopHardware) SetDirection(uint8, Direction) {}
func (NopHardware) SetPin(uint8, uint16)          {}
func (NopHardware) GetPin(uint8) uint16           { return 0 }
func (NopHardware) Wait(uint16)                   {}
func (NopHardware) Transmit(int, uint16)          {}
func (NopHardware) Receive(int) uint16            { return 0 }

type Event struct {
	Op    OpCode
	Pin   uint8
	Value uint16
}

// Bench is a simulated board: pins read back the last level driven on them,
// received words come from Input in order, and every access is recorded.
type Bench struct {
	mu         sync.Mutex
	levels     [256]uint16
	directions [256]Direction
	Input      []uint16
	Events     []Event
	Waited     uint64
}

var _ Hardware = new(Bench)

func (b *Bench) SetDirection(pin uint8, dir Direction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.directions[pin] = dir
	op := OpSetOutput
	if dir == Input {
		op = OpSetInput
	}
	b.Events = append(b.Events, Event{Op: op, Pin: pin})
}

func (b *Bench) SetPin(pin uint8, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.levels[pin] = value
	b.Events = append(b.Events, Event{Op: OpSetPin, Pin: pin, Value: value})
}

func (b *Bench) GetPin(pin uint8) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.levels[pin]
	b.Events = append(b.Events, Event{Op: OpGetPin, Pin: pin, Value: v})
	return v
}

func (b *Bench) Wait(duration uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Waited += uint64(duration)
	b.Events = append(b.Events, Event{Op: OpWait, Value: duration})
}

func (b *Bench) Transmit(bits int, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op := OpTx16
	if bits == 8 {
		op = OpTx8
	}
	b.Events = append(b.Events, Event{Op: op, Value: value})
}

func (b *Bench) Receive(bits int) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var v uint16
	if len(b.Input) > 0 {
		v = b.Input[0]
		b.Input = b.Input[1:]
	}
	op := OpRx16
	if bits == 8 {
		op = OpRx8
	}
	b.Events = append(b.Events, Event{Op: op, Value: v})
	return v
}

func (b *Bench) Level(pin uint8) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.levels[pin]
}

func (b *Bench) Direction(pin uint8) Direction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.directions[pin]
}
