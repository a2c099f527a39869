package m6502

// mode is the addressing step of an instruction.
type mode uint8

const (
	modeImp mode = iota
	modeAcc
	modeImm
	modeZpg
	modeZpx
	modeZpy
	modeAbs
	modeAbx
	modeAby
	modeInd
	modeIdx
	modeIdy
	modeRel
	modeZpi // (zp), CMOS only
	modeIax // (abs,X), CMOS only
	modeZpr // zp,rel for BBR/BBS
)

// operandBytes is the instruction length minus the opcode byte.
var operandBytes = [...]uint16{
	modeImp: 0, modeAcc: 0, modeImm: 1, modeZpg: 1, modeZpx: 1, modeZpy: 1,
	modeAbs: 2, modeAbx: 2, modeAby: 2, modeInd: 2, modeIdx: 1, modeIdy: 1,
	modeRel: 1, modeZpi: 1, modeIax: 2, modeZpr: 2,
}

// op is the operation step of an instruction.
type op uint8

const (
	opADC op = iota
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// ALU variants of ADC/SBC.
	opADCBin // no decimal mode (2A03)
	opSBCBin
	opADCCmos // decimal mode with valid flags and one extra cycle
	opSBCCmos

	// CMOS additions.
	opBRA
	opBITImm
	opPHX
	opPHY
	opPLX
	opPLY
	opSTZ
	opTRB
	opTSB
	opRMB
	opSMB
	opBBR
	opBBS

	// NMOS undocumented opcodes.
	opKIL
	opSLO
	opRLA
	opSRE
	opRRA
	opSAX
	opLAX
	opDCP
	opISB
	opANC
	opALR
	opARR
	opSBX
	opLAS
	opSHA
	opSHX
	opSHY
	opTAS
	opANE // unstable, executed as a logged no-op
	opLXA // unstable, executed as a logged no-op

	// DECO16 specials.
	opDecoIn
	opDecoBank
	opDecoUnknown
)

const (
	pg  uint8 = 1 << iota // page crossing costs one more cycle
	ill                   // undocumented on this part
)

type entry struct {
	op     op
	mode   mode
	cycles uint8
	flags  uint8
}

func (e entry) penalty() bool { return e.flags&pg != 0 }
func (e entry) illegal() bool { return e.flags&ill != 0 }

// nmos is the base opcode table of the NMOS 6502, undocumented opcodes included.
var nmos = [256]entry{
	0x00: {opBRK, modeImp, 7, 0}, 0x01: {opORA, modeIdx, 6, 0}, 0x02: {opKIL, modeImp, 2, ill}, 0x03: {opSLO, modeIdx, 8, ill},
	0x04: {opNOP, modeZpg, 3, ill}, 0x05: {opORA, modeZpg, 3, 0}, 0x06: {opASL, modeZpg, 5, 0}, 0x07: {opSLO, modeZpg, 5, ill},
	0x08: {opPHP, modeImp, 3, 0}, 0x09: {opORA, modeImm, 2, 0}, 0x0A: {opASL, modeAcc, 2, 0}, 0x0B: {opANC, modeImm, 2, ill},
	0x0C: {opNOP, modeAbs, 4, ill}, 0x0D: {opORA, modeAbs, 4, 0}, 0x0E: {opASL, modeAbs, 6, 0}, 0x0F: {opSLO, modeAbs, 6, ill},

	0x10: {opBPL, modeRel, 2, 0}, 0x11: {opORA, modeIdy, 5, pg}, 0x12: {opKIL, modeImp, 2, ill}, 0x13: {opSLO, modeIdy, 8, ill},
	0x14: {opNOP, modeZpx, 4, ill}, 0x15: {opORA, modeZpx, 4, 0}, 0x16: {opASL, modeZpx, 6, 0}, 0x17: {opSLO, modeZpx, 6, ill},
	0x18: {opCLC, modeImp, 2, 0}, 0x19: {opORA, modeAby, 4, pg}, 0x1A: {opNOP, modeImp, 2, ill}, 0x1B: {opSLO, modeAby, 7, ill},
	0x1C: {opNOP, modeAbx, 4, pg | ill}, 0x1D: {opORA, modeAbx, 4, pg}, 0x1E: {opASL, modeAbx, 7, 0}, 0x1F: {opSLO, modeAbx, 7, ill},

	0x20: {opJSR, modeAbs, 6, 0}, 0x21: {opAND, modeIdx, 6, 0}, 0x22: {opKIL, modeImp, 2, ill}, 0x23: {opRLA, modeIdx, 8, ill},
	0x24: {opBIT, modeZpg, 3, 0}, 0x25: {opAND, modeZpg, 3, 0}, 0x26: {opROL, modeZpg, 5, 0}, 0x27: {opRLA, modeZpg, 5, ill},
	0x28: {opPLP, modeImp, 4, 0}, 0x29: {opAND, modeImm, 2, 0}, 0x2A: {opROL, modeAcc, 2, 0}, 0x2B: {opANC, modeImm, 2, ill},
	0x2C: {opBIT, modeAbs, 4, 0}, 0x2D: {opAND, modeAbs, 4, 0}, 0x2E: {opROL, modeAbs, 6, 0}, 0x2F: {opRLA, modeAbs, 6, ill},

	0x30: {opBMI, modeRel, 2, 0}, 0x31: {opAND, modeIdy, 5, pg}, 0x32: {opKIL, modeImp, 2, ill}, 0x33: {opRLA, modeIdy, 8, ill},
	0x34: {opNOP, modeZpx, 4, ill}, 0x35: {opAND, modeZpx, 4, 0}, 0x36: {opROL, modeZpx, 6, 0}, 0x37: {opRLA, modeZpx, 6, ill},
	0x38: {opSEC, modeImp, 2, 0}, 0x39: {opAND, modeAby, 4, pg}, 0x3A: {opNOP, modeImp, 2, ill}, 0x3B: {opRLA, modeAby, 7, ill},
	0x3C: {opNOP, modeAbx, 4, pg | ill}, 0x3D: {opAND, modeAbx, 4, pg}, 0x3E: {opROL, modeAbx, 7, 0}, 0x3F: {opRLA, modeAbx, 7, ill},

	0x40: {opRTI, modeImp, 6, 0}, 0x41: {opEOR, modeIdx, 6, 0}, 0x42: {opKIL, modeImp, 2, ill}, 0x43: {opSRE, modeIdx, 8, ill},
	0x44: {opNOP, modeZpg, 3, ill}, 0x45: {opEOR, modeZpg, 3, 0}, 0x46: {opLSR, modeZpg, 5, 0}, 0x47: {opSRE, modeZpg, 5, ill},
	0x48: {opPHA, modeImp, 3, 0}, 0x49: {opEOR, modeImm, 2, 0}, 0x4A: {opLSR, modeAcc, 2, 0}, 0x4B: {opALR, modeImm, 2, ill},
	0x4C: {opJMP, modeAbs, 3, 0}, 0x4D: {opEOR, modeAbs, 4, 0}, 0x4E: {opLSR, modeAbs, 6, 0}, 0x4F: {opSRE, modeAbs, 6, ill},

	0x50: {opBVC, modeRel, 2, 0}, 0x51: {opEOR, modeIdy, 5, pg}, 0x52: {opKIL, modeImp, 2, ill}, 0x53: {opSRE, modeIdy, 8, ill},
	0x54: {opNOP, modeZpx, 4, ill}, 0x55: {opEOR, modeZpx, 4, 0}, 0x56: {opLSR, modeZpx, 6, 0}, 0x57: {opSRE, modeZpx, 6, ill},
	0x58: {opCLI, modeImp, 2, 0}, 0x59: {opEOR, modeAby, 4, pg}, 0x5A: {opNOP, modeImp, 2, ill}, 0x5B: {opSRE, modeAby, 7, ill},
	0x5C: {opNOP, modeAbx, 4, pg | ill}, 0x5D: {opEOR, modeAbx, 4, pg}, 0x5E: {opLSR, modeAbx, 7, 0}, 0x5F: {opSRE, modeAbx, 7, ill},

	0x60: {opRTS, modeImp, 6, 0}, 0x61: {opADC, modeIdx, 6, 0}, 0x62: {opKIL, modeImp, 2, ill}, 0x63: {opRRA, modeIdx, 8, ill},
	0x64: {opNOP, modeZpg, 3, ill}, 0x65: {opADC, modeZpg, 3, 0}, 0x66: {opROR, modeZpg, 5, 0}, 0x67: {opRRA, modeZpg, 5, ill},
	0x68: {opPLA, modeImp, 4, 0}, 0x69: {opADC, modeImm, 2, 0}, 0x6A: {opROR, modeAcc, 2, 0}, 0x6B: {opARR, modeImm, 2, ill},
	0x6C: {opJMP, modeInd, 5, 0}, 0x6D: {opADC, modeAbs, 4, 0}, 0x6E: {opROR, modeAbs, 6, 0}, 0x6F: {opRRA, modeAbs, 6, ill},

	0x70: {opBVS, modeRel, 2, 0}, 0x71: {opADC, modeIdy, 5, pg}, 0x72: {opKIL, modeImp, 2, ill}, 0x73: {opRRA, modeIdy, 8, ill},
	0x74: {opNOP, modeZpx, 4, ill}, 0x75: {opADC, modeZpx, 4, 0}, 0x76: {opROR, modeZpx, 6, 0}, 0x77: {opRRA, modeZpx, 6, ill},
	0x78: {opSEI, modeImp, 2, 0}, 0x79: {opADC, modeAby, 4, pg}, 0x7A: {opNOP, modeImp, 2, ill}, 0x7B: {opRRA, modeAby, 7, ill},
	0x7C: {opNOP, modeAbx, 4, pg | ill}, 0x7D: {opADC, modeAbx, 4, pg}, 0x7E: {opROR, modeAbx, 7, 0}, 0x7F: {opRRA, modeAbx, 7, ill},

	0x80: {opNOP, modeImm, 2, ill}, 0x81: {opSTA, modeIdx, 6, 0}, 0x82: {opNOP, modeImm, 2, ill}, 0x83: {opSAX, modeIdx, 6, ill},
	0x84: {opSTY, modeZpg, 3, 0}, 0x85: {opSTA, modeZpg, 3, 0}, 0x86: {opSTX, modeZpg, 3, 0}, 0x87: {opSAX, modeZpg, 3, ill},
	0x88: {opDEY, modeImp, 2, 0}, 0x89: {opNOP, modeImm, 2, ill}, 0x8A: {opTXA, modeImp, 2, 0}, 0x8B: {opANE, modeImm, 2, ill},
	0x8C: {opSTY, modeAbs, 4, 0}, 0x8D: {opSTA, modeAbs, 4, 0}, 0x8E: {opSTX, modeAbs, 4, 0}, 0x8F: {opSAX, modeAbs, 4, ill},

	0x90: {opBCC, modeRel, 2, 0}, 0x91: {opSTA, modeIdy, 6, 0}, 0x92: {opKIL, modeImp, 2, ill}, 0x93: {opSHA, modeIdy, 6, ill},
	0x94: {opSTY, modeZpx, 4, 0}, 0x95: {opSTA, modeZpx, 4, 0}, 0x96: {opSTX, modeZpy, 4, 0}, 0x97: {opSAX, modeZpy, 4, ill},
	0x98: {opTYA, modeImp, 2, 0}, 0x99: {opSTA, modeAby, 5, 0}, 0x9A: {opTXS, modeImp, 2, 0}, 0x9B: {opTAS, modeAby, 5, ill},
	0x9C: {opSHY, modeAbx, 5, ill}, 0x9D: {opSTA, modeAbx, 5, 0}, 0x9E: {opSHX, modeAby, 5, ill}, 0x9F: {opSHA, modeAby, 5, ill},

	0xA0: {opLDY, modeImm, 2, 0}, 0xA1: {opLDA, modeIdx, 6, 0}, 0xA2: {opLDX, modeImm, 2, 0}, 0xA3: {opLAX, modeIdx, 6, ill},
	0xA4: {opLDY, modeZpg, 3, 0}, 0xA5: {opLDA, modeZpg, 3, 0}, 0xA6: {opLDX, modeZpg, 3, 0}, 0xA7: {opLAX, modeZpg, 3, ill},
	0xA8: {opTAY, modeImp, 2, 0}, 0xA9: {opLDA, modeImm, 2, 0}, 0xAA: {opTAX, modeImp, 2, 0}, 0xAB: {opLXA, modeImm, 2, ill},
	0xAC: {opLDY, modeAbs, 4, 0}, 0xAD: {opLDA, modeAbs, 4, 0}, 0xAE: {opLDX, modeAbs, 4, 0}, 0xAF: {opLAX, modeAbs, 4, ill},

	0xB0: {opBCS, modeRel, 2, 0}, 0xB1: {opLDA, modeIdy, 5, pg}, 0xB2: {opKIL, modeImp, 2, ill}, 0xB3: {opLAX, modeIdy, 5, pg | ill},
	0xB4: {opLDY, modeZpx, 4, 0}, 0xB5: {opLDA, modeZpx, 4, 0}, 0xB6: {opLDX, modeZpy, 4, 0}, 0xB7: {opLAX, modeZpy, 4, ill},
	0xB8: {opCLV, modeImp, 2, 0}, 0xB9: {opLDA, modeAby, 4, pg}, 0xBA: {opTSX, modeImp, 2, 0}, 0xBB: {opLAS, modeAby, 4, pg | ill},
	0xBC: {opLDY, modeAbx, 4, pg}, 0xBD: {opLDA, modeAbx, 4, pg}, 0xBE: {opLDX, modeAby, 4, pg}, 0xBF: {opLAX, modeAby, 4, pg | ill},

	0xC0: {opCPY, modeImm, 2, 0}, 0xC1: {opCMP, modeIdx, 6, 0}, 0xC2: {opNOP, modeImm, 2, ill}, 0xC3: {opDCP, modeIdx, 8, ill},
	0xC4: {opCPY, modeZpg, 3, 0}, 0xC5: {opCMP, modeZpg, 3, 0}, 0xC6: {opDEC, modeZpg, 5, 0}, 0xC7: {opDCP, modeZpg, 5, ill},
	0xC8: {opINY, modeImp, 2, 0}, 0xC9: {opCMP, modeImm, 2, 0}, 0xCA: {opDEX, modeImp, 2, 0}, 0xCB: {opSBX, modeImm, 2, ill},
	0xCC: {opCPY, modeAbs, 4, 0}, 0xCD: {opCMP, modeAbs, 4, 0}, 0xCE: {opDEC, modeAbs, 6, 0}, 0xCF: {opDCP, modeAbs, 6, ill},

	0xD0: {opBNE, modeRel, 2, 0}, 0xD1: {opCMP, modeIdy, 5, pg}, 0xD2: {opKIL, modeImp, 2, ill}, 0xD3: {opDCP, modeIdy, 8, ill},
	0xD4: {opNOP, modeZpx, 4, ill}, 0xD5: {opCMP, modeZpx, 4, 0}, 0xD6: {opDEC, modeZpx, 6, 0}, 0xD7: {opDCP, modeZpx, 6, ill},
	0xD8: {opCLD, modeImp, 2, 0}, 0xD9: {opCMP, modeAby, 4, pg}, 0xDA: {opNOP, modeImp, 2, ill}, 0xDB: {opDCP, modeAby, 7, ill},
	0xDC: {opNOP, modeAbx, 4, pg | ill}, 0xDD: {opCMP, modeAbx, 4, pg}, 0xDE: {opDEC, modeAbx, 7, 0}, 0xDF: {opDCP, modeAbx, 7, ill},

	0xE0: {opCPX, modeImm, 2, 0}, 0xE1: {opSBC, modeIdx, 6, 0}, 0xE2: {opNOP, modeImm, 2, ill}, 0xE3: {opISB, modeIdx, 8, ill},
	0xE4: {opCPX, modeZpg, 3, 0}, 0xE5: {opSBC, modeZpg, 3, 0}, 0xE6: {opINC, modeZpg, 5, 0}, 0xE7: {opISB, modeZpg, 5, ill},
	0xE8: {opINX, modeImp, 2, 0}, 0xE9: {opSBC, modeImm, 2, 0}, 0xEA: {opNOP, modeImp, 2, 0}, 0xEB: {opSBC, modeImm, 2, ill},
	0xEC: {opCPX, modeAbs, 4, 0}, 0xED: {opSBC, modeAbs, 4, 0}, 0xEE: {opINC, modeAbs, 6, 0}, 0xEF: {opISB, modeAbs, 6, ill},

	0xF0: {opBEQ, modeRel, 2, 0}, 0xF1: {opSBC, modeIdy, 5, pg}, 0xF2: {opKIL, modeImp, 2, ill}, 0xF3: {opISB, modeIdy, 8, ill},
	0xF4: {opNOP, modeZpx, 4, ill}, 0xF5: {opSBC, modeZpx, 4, 0}, 0xF6: {opINC, modeZpx, 6, 0}, 0xF7: {opISB, modeZpx, 6, ill},
	0xF8: {opSED, modeImp, 2, 0}, 0xF9: {opSBC, modeAby, 4, pg}, 0xFA: {opNOP, modeImp, 2, ill}, 0xFB: {opISB, modeAby, 7, ill},
	0xFC: {opNOP, modeAbx, 4, pg | ill}, 0xFD: {opSBC, modeAbx, 4, pg}, 0xFE: {opINC, modeAbx, 7, 0}, 0xFF: {opISB, modeAbx, 7, ill},
}

// override replaces one opcode slot of a base table.
type override struct {
	opcode uint8
	entry  entry
}

// aluOverrides swaps the arithmetic step of every ADC and SBC slot of base,
// keeping addressing and timing.
func aluOverrides(base *[256]entry, adc, sbc op) []override {
	var list []override
	for opcode, e := range base {
		switch e.op {
		case opADC, opADCBin, opADCCmos:
			e.op = adc
		case opSBC, opSBCBin, opSBCCmos:
			e.op = sbc
		default:
			continue
		}
		list = append(list, override{uint8(opcode), e})
	}
	return list
}

// cmosOverrides turns the NMOS table into the 65C02 one.
func cmosOverrides() []override {
	list := []override{
		{0x04, entry{opTSB, modeZpg, 5, 0}}, {0x0C, entry{opTSB, modeAbs, 6, 0}},
		{0x14, entry{opTRB, modeZpg, 5, 0}}, {0x1C, entry{opTRB, modeAbs, 6, 0}},
		{0x1A, entry{opINC, modeAcc, 2, 0}}, {0x3A, entry{opDEC, modeAcc, 2, 0}},
		{0x34, entry{opBIT, modeZpx, 4, 0}}, {0x3C, entry{opBIT, modeAbx, 4, pg}},
		{0x89, entry{opBITImm, modeImm, 2, 0}},
		{0x44, entry{opNOP, modeZpg, 3, 0}}, {0x54, entry{opNOP, modeZpx, 4, 0}},
		{0xD4, entry{opNOP, modeZpx, 4, 0}}, {0xF4, entry{opNOP, modeZpx, 4, 0}},
		{0x5C, entry{opNOP, modeAbs, 8, 0}}, {0xDC, entry{opNOP, modeAbs, 4, 0}},
		{0xFC, entry{opNOP, modeAbs, 4, 0}},
		{0x64, entry{opSTZ, modeZpg, 3, 0}}, {0x74, entry{opSTZ, modeZpx, 4, 0}},
		{0x9C, entry{opSTZ, modeAbs, 4, 0}}, {0x9E, entry{opSTZ, modeAbx, 5, 0}},
		{0x5A, entry{opPHY, modeImp, 3, 0}}, {0x7A, entry{opPLY, modeImp, 4, 0}},
		{0xDA, entry{opPHX, modeImp, 3, 0}}, {0xFA, entry{opPLX, modeImp, 4, 0}},
		{0x6C, entry{opJMP, modeInd, 6, 0}}, {0x7C, entry{opJMP, modeIax, 6, 0}},
		{0x80, entry{opBRA, modeRel, 2, 0}},
		{0x1E, entry{opASL, modeAbx, 6, pg}}, {0x3E, entry{opROL, modeAbx, 6, pg}},
		{0x5E, entry{opLSR, modeAbx, 6, pg}}, {0x7E, entry{opROR, modeAbx, 6, pg}},
	}

	zpi := []op{opORA, opAND, opEOR, opADC, opSTA, opLDA, opCMP, opSBC}
	for i, o := range zpi {
		opcode := uint8(i<<5 | 0x12)
		list = append(list, override{opcode, entry{o, modeZpi, 5, 0}})
	}

	for row := 0; row < 16; row++ {
		hi := uint8(row << 4)
		if row%2 == 0 && hi != 0xA0 {
			list = append(list, override{hi | 0x02, entry{opNOP, modeImm, 2, 0}})
		}
		list = append(list, override{hi | 0x03, entry{opNOP, modeImp, 1, 0}})
		list = append(list, override{hi | 0x0B, entry{opNOP, modeImp, 1, 0}})
		if row < 8 {
			list = append(list, override{hi | 0x07, entry{opRMB, modeZpg, 5, 0}})
			list = append(list, override{hi | 0x0F, entry{opBBR, modeZpr, 5, 0}})
		} else {
			list = append(list, override{hi | 0x07, entry{opSMB, modeZpg, 5, 0}})
			list = append(list, override{hi | 0x0F, entry{opBBS, modeZpr, 5, 0}})
		}
	}
	return list
}

// sc02Overrides removes the Rockwell bit instructions from the 65C02 table.
func sc02Overrides() []override {
	var list []override
	for row := 0; row < 16; row++ {
		hi := uint8(row << 4)
		list = append(list,
			override{hi | 0x07, entry{opNOP, modeImp, 1, 0}},
			override{hi | 0x0F, entry{opNOP, modeImp, 1, 0}})
	}
	return list
}

func deco16Overrides() []override {
	list := []override{
		{0x67, entry{opDecoIn, modeImm, 2, 0}},
		{0x8F, entry{opDecoBank, modeImm, 3, 0}},
	}
	for _, opcode := range []uint8{0x23, 0x63, 0xA3, 0x13, 0x87, 0x0B, 0x4B, 0xBB, 0x3F} {
		list = append(list, override{opcode, entry{opDecoUnknown, modeImm, 3, ill}})
	}
	return list
}

func compose(base [256]entry, lists ...[]override) [256]entry {
	table := base
	for _, list := range lists {
		for _, o := range list {
			table[o.opcode] = o.entry
		}
	}
	return table
}

var tables = buildTables()

func buildTables() map[Variant]*[256]entry {
	cmos := compose(nmos, cmosOverrides())
	cmos = compose(cmos, aluOverrides(&cmos, opADCCmos, opSBCCmos))
	sc02 := compose(cmos, sc02Overrides())
	n2a03 := compose(nmos, aluOverrides(&nmos, opADCBin, opSBCBin))
	// The DECO16 keeps the NMOS decimal adder on a CMOS decoder.
	deco := compose(cmos, aluOverrides(&cmos, opADC, opSBC), deco16Overrides())

	return map[Variant]*[256]entry{
		NMOS6502: &nmos,
		M65C02:   &cmos,
		M65SC02:  &sc02,
		N2A03:    &n2a03,
		M6510:    &nmos,
		DECO16:   &deco,
	}
}
