package cpu

// Core is the host-facing control surface shared by every interpreter.
// Exactly one goroutine may drive a Core at a time.
type Core interface {
	Arch() Arch
	Reset()

	// Execute runs instructions until at least cycles have been spent and
	// returns the cycles consumed, which may exceed the request slightly.
	Execute(cycles int) int
	// Step runs one instruction (or interrupt entry, DMA or idle cycle) and
	// returns its cost without touching the budget carried between Execute
	// calls. It returns 0 while halted.
	Step() int

	SetInputLine(line Line, state LineState)

	// ContextSize is the buffer size GetContext needs.
	ContextSize() int
	// GetContext copies the whole CPU state into dst; a nil dst does nothing.
	GetContext(dst []byte) (int, error)
	// SetContext replaces the CPU state; a nil or empty src does nothing.
	SetContext(src []byte) error

	PC() uint32
	Registers() []Register
	Register(name string) (uint32, bool)
	SetRegister(name string, value uint32) error

	// Disassemble decodes the instruction at pc using plain bus reads.
	// length is the distance to the next instruction in PC units.
	Disassemble(pc uint32) (text string, length int)
}

// Register is a named register value for debuggers and save-state tooling.
type Register struct {
	Name  string
	Width int
	Value uint32
}

// LookupRegister finds a register by name in a snapshot.
func LookupRegister(regs []Register, name string) (uint32, bool) {
	for _, r := range regs {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}
