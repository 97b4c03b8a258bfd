package wiggvm

import (
	"encoding/gob"
	"io"
)

// Snapshot writes registers, stack and code. Hardware is not part of a snapshot.
func (m *Machine) Snapshot(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return nil
}

// Restore replaces machine state with a snapshot, keeping the attached hardware.
func (m *Machine) Restore(r io.Reader) error {
	// gob skips zero fields, so decode into a zero machine rather than a reset one
	restored := new(Machine)
	dec := gob.NewDecoder(r)
	if err := dec.Decode(restored); err != nil {
		return err
	}
	restored.hardware = m.hardware
	if len(restored.Code) > CodeSize {
		return ErrCodeTooLarge
	}
	*m = *restored
	return nil
}
