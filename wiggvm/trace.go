package wiggvm

import (
	"context"
	"log/slog"

	"github.com/reusee/wiggler/logs"
)

// TraceHardware logs every hardware access at Level before forwarding it.
type TraceHardware struct {
	Hardware Hardware
	Logger   logs.Logger
	Level    slog.Level
	Context  context.Context
}

var _ Hardware = TraceHardware{}

func (t TraceHardware) log(msg string, attrs ...slog.Attr) {
	ctx := t.Context
	if ctx == nil {
		ctx = context.Background()
	}
	t.Logger.LogAttrs(ctx, t.Level, msg, attrs...)
}

func (t TraceHardware) SetDirection(pin uint8, dir Direction) {
	t.log("set direction", slog.Int("pin", int(pin)), slog.String("direction", dir.String()))
	t.Hardware.SetDirection(pin, dir)
}

func (t TraceHardware) SetPin(pin uint8, value uint16) {
	t.log("set pin", slog.Int("pin", int(pin)), slog.Int("value", int(value)))
	t.Hardware.SetPin(pin, value)
}

func (t TraceHardware) GetPin(pin uint8) uint16 {
	v := t.Hardware.GetPin(pin)
	t.log("get pin", slog.Int("pin", int(pin)), slog.Int("value", int(v)))
	return v
}

func (t TraceHardware) Wait(duration uint16) {
	t.log("wait", slog.Int("duration", int(duration)))
	t.Hardware.Wait(duration)
}

func (t TraceHardware) Transmit(bits int, value uint16) {
	t.log("transmit", slog.Int("bits", bits), slog.Int("value", int(value)))
	t.Hardware.Transmit(bits, value)
}

func (t TraceHardware) Receive(bits int) uint16 {
	v := t.Hardware.Receive(bits)
	t.log("receive", slog.Int("bits", bits), slog.Int("value", int(v)))
	return v
}
