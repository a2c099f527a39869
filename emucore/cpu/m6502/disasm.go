package m6502

import "fmt"

var opNames = [...]string{
	opADC: "ADC", opAND: "AND", opASL: "ASL", opBCC: "BCC", opBCS: "BCS", opBEQ: "BEQ",
	opBIT: "BIT", opBMI: "BMI", opBNE: "BNE", opBPL: "BPL", opBRK: "BRK", opBVC: "BVC",
	opBVS: "BVS", opCLC: "CLC", opCLD: "CLD", opCLI: "CLI", opCLV: "CLV", opCMP: "CMP",
	opCPX: "CPX", opCPY: "CPY", opDEC: "DEC", opDEX: "DEX", opDEY: "DEY", opEOR: "EOR",
	opINC: "INC", opINX: "INX", opINY: "INY", opJMP: "JMP", opJSR: "JSR", opLDA: "LDA",
	opLDX: "LDX", opLDY: "LDY", opLSR: "LSR", opNOP: "NOP", opORA: "ORA", opPHA: "PHA",
	opPHP: "PHP", opPLA: "PLA", opPLP: "PLP", opROL: "ROL", opROR: "ROR", opRTI: "RTI",
	opRTS: "RTS", opSBC: "SBC", opSEC: "SEC", opSED: "SED", opSEI: "SEI", opSTA: "STA",
	opSTX: "STX", opSTY: "STY", opTAX: "TAX", opTAY: "TAY", opTSX: "TSX", opTXA: "TXA",
	opTXS: "TXS", opTYA: "TYA",

	opADCBin: "ADC", opSBCBin: "SBC", opADCCmos: "ADC", opSBCCmos: "SBC",

	opBRA: "BRA", opBITImm: "BIT", opPHX: "PHX", opPHY: "PHY", opPLX: "PLX", opPLY: "PLY",
	opSTZ: "STZ", opTRB: "TRB", opTSB: "TSB", opRMB: "RMB", opSMB: "SMB", opBBR: "BBR",
	opBBS: "BBS",

	opKIL: "KIL", opSLO: "SLO", opRLA: "RLA", opSRE: "SRE", opRRA: "RRA", opSAX: "SAX",
	opLAX: "LAX", opDCP: "DCP", opISB: "ISB", opANC: "ANC", opALR: "ALR", opARR: "ARR",
	opSBX: "SBX", opLAS: "LAS", opSHA: "SHA", opSHX: "SHX", opSHY: "SHY", opTAS: "TAS",
	opANE: "ANE", opLXA: "LXA",

	opDecoIn: "VBL", opDecoBank: "BAN", opDecoUnknown: "U",
}

// Disassemble decodes the instruction at pc with side-effect free bus reads.
// Undocumented opcodes are prefixed with '*'.
func (c *CPU) Disassemble(pc uint32) (string, int) {
	at := uint16(pc)
	opcode := c.bus.Read(uint32(at))
	e := c.table[opcode]
	length := 1 + int(operandBytes[e.mode])

	b1 := c.bus.Read(uint32(at + 1))
	b2 := c.bus.Read(uint32(at + 2))
	word := uint16(b2)<<8 | uint16(b1)

	name := opNames[e.op]
	switch e.op {
	case opRMB, opSMB, opBBR, opBBS:
		name = fmt.Sprintf("%s%d", name, (opcode>>4)&0x07)
	case opDecoUnknown:
		name = fmt.Sprintf("%s%02X", name, opcode)
	}
	if e.illegal() {
		name = "*" + name
	}

	var operand string
	switch e.mode {
	case modeImp:
	case modeAcc:
		operand = "A"
	case modeImm:
		operand = fmt.Sprintf("#$%02X", b1)
	case modeZpg:
		operand = fmt.Sprintf("$%02X", b1)
	case modeZpx:
		operand = fmt.Sprintf("$%02X,X", b1)
	case modeZpy:
		operand = fmt.Sprintf("$%02X,Y", b1)
	case modeAbs:
		operand = fmt.Sprintf("$%04X", word)
	case modeAbx:
		operand = fmt.Sprintf("$%04X,X", word)
	case modeAby:
		operand = fmt.Sprintf("$%04X,Y", word)
	case modeInd:
		operand = fmt.Sprintf("($%04X)", word)
	case modeIdx:
		operand = fmt.Sprintf("($%02X,X)", b1)
	case modeIdy:
		operand = fmt.Sprintf("($%02X),Y", b1)
	case modeZpi:
		operand = fmt.Sprintf("($%02X)", b1)
	case modeIax:
		operand = fmt.Sprintf("($%04X,X)", word)
	case modeRel:
		operand = fmt.Sprintf("$%04X", at+2+uint16(int8(b1)))
	case modeZpr:
		operand = fmt.Sprintf("$%02X,$%04X", b1, at+3+uint16(int8(b2)))
	}

	if operand == "" {
		return name, length
	}
	return name + " " + operand, length
}
