package machine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	stateMagic   = "EMCH"
	stateVersion = 1
)

// Save serializes machine time and every slot's context and local time.
//
// Layout, little endian:
//
//	magic "EMCH" | version u16 | elapsed i64 | slot count u16
//	per slot: name length u16 | name | executed u64 | context length u32 | context
func (m *Machine) Save() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(stateMagic)
	header := stateHeader{Version: stateVersion, Elapsed: int64(m.elapsed), Count: uint16(len(m.slots))}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to save header: %w", err)
	}

	for _, s := range m.slots {
		ctx := make([]byte, s.Core.ContextSize())
		n, err := s.Core.GetContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to save slot %q: %w", s.Name, err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(s.Name))); err != nil {
			return nil, fmt.Errorf("failed to save slot %q: %w", s.Name, err)
		}
		buf.WriteString(s.Name)
		if err := binary.Write(&buf, binary.LittleEndian, slotFixed{Executed: s.executed, Size: uint32(n)}); err != nil {
			return nil, fmt.Errorf("failed to save slot %q: %w", s.Name, err)
		}
		buf.Write(ctx[:n])
	}
	return buf.Bytes(), nil
}

type stateHeader struct {
	Version uint16
	Elapsed int64
	Count   uint16
}

type slotFixed struct {
	Executed uint64
	Size     uint32
}

// Load restores a state produced by Save on a machine with the same slots.
// Slots are matched by name. Either every slot is restored or none is: the
// state is parsed and sized up front, and a context rejected by its core
// rolls back the slots already restored.
func (m *Machine) Load(data []byte) error {
	r := bytes.NewReader(data)
	magic := make([]byte, len(stateMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != stateMagic {
		return fmt.Errorf("%w: bad magic", ErrCorruptState)
	}

	var header stateHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	if header.Version != stateVersion {
		return fmt.Errorf("%w: version %d", ErrCorruptState, header.Version)
	}
	if int(header.Count) != len(m.slots) {
		return fmt.Errorf("%w: %d slots saved, machine has %d", ErrCorruptState, header.Count, len(m.slots))
	}

	type entry struct {
		slot     *slot
		executed uint64
		ctx      []byte
	}
	entries := make([]entry, 0, header.Count)
	seen := make(map[string]bool, header.Count)
	for range header.Count {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		if seen[string(name)] {
			return fmt.Errorf("%w: slot %q saved twice", ErrCorruptState, name)
		}
		seen[string(name)] = true
		s, err := m.slot(string(name))
		if err != nil {
			return err
		}

		var fixed slotFixed
		if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		if int64(fixed.Size) > int64(r.Len()) {
			return fmt.Errorf("%w: context of %q truncated", ErrCorruptState, s.Name)
		}
		ctx := make([]byte, fixed.Size)
		if _, err := io.ReadFull(r, ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		if int(fixed.Size) != s.Core.ContextSize() {
			return fmt.Errorf("%w: context of %q is %d bytes, core wants %d", ErrCorruptState, s.Name, fixed.Size, s.Core.ContextSize())
		}
		entries = append(entries, entry{slot: s, executed: fixed.Executed, ctx: ctx})
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptState, r.Len())
	}

	backup := make([][]byte, len(entries))
	for i, e := range entries {
		backup[i] = make([]byte, e.slot.Core.ContextSize())
		n, err := e.slot.Core.GetContext(backup[i])
		if err != nil {
			return fmt.Errorf("failed to snapshot slot %q: %w", e.slot.Name, err)
		}
		backup[i] = backup[i][:n]
	}
	for i, e := range entries {
		if err := e.slot.Core.SetContext(e.ctx); err != nil {
			for j := range i {
				// A context the core produced itself is always accepted back.
				_ = entries[j].slot.Core.SetContext(backup[j])
			}
			return fmt.Errorf("failed to load slot %q: %w", e.slot.Name, err)
		}
	}
	for _, e := range entries {
		e.slot.executed = e.executed
	}
	m.elapsed = time.Duration(header.Elapsed)
	return nil
}
