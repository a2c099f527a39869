package cpu

// Bus is the memory side of the host board. The core holds no memory of its own:
// every fetch, read and write goes through here, and address aliasing or
// open-bus behaviour is the bus's business.
type Bus interface {
	// ReadOpcode is used for opcode and operand fetches, which some boards
	// decode differently from data reads.
	ReadOpcode(address uint32) byte
	Read(address uint32) byte
	Write(address uint32, value byte)
}

// IOBus is the port space, narrower than memory on most parts.
type IOBus interface {
	In(port uint32) byte
	Out(port uint32, value byte)
}

// AckFunc is called when the core accepts an interrupt on line. Returning
// override=true replaces the architecture's vector with the returned one.
type AckFunc func(line Line) (vector uint32, override bool)

// IgnoreAck is an AckFunc for hosts that manage their lines themselves.
func IgnoreAck(Line) (uint32, bool) {
	return 0, false
}
