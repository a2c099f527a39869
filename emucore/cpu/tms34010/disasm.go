package tms34010

import "fmt"

func hex16(v uint16) string { return fmt.Sprintf("0x%04X", v) }
func hex32(v uint32) string { return fmt.Sprintf("0x%08X", v) }

var blockNames = map[uint16]string{
	0x0F00: "PIXBLT B,L", 0x0F20: "PIXBLT B,XY", 0x0F40: "PIXBLT L,L", 0x0F60: "PIXBLT L,XY",
	0x0F80: "PIXBLT XY,L", 0x0FA0: "PIXBLT XY,XY", 0x0FC0: "FILL L", 0x0FE0: "FILL XY",
	0xDF1A: "LINE 0", 0xDF9A: "LINE 1",
}

func blockName(op uint16) string {
	if name, ok := blockNames[op]; ok {
		return name
	}
	switch op & 0xFE00 {
	case 0xE600:
		return "CPW"
	case 0xE800:
		return "CVXYL"
	case 0xF600:
		return "DRAV"
	}
	return "?"
}

// disassembler reads instruction words without touching the CPU state.
type disassembler struct {
	c  *CPU
	pc uint32
}

func (d *disassembler) word() uint16 {
	b := d.pc >> 3
	d.pc += 16
	return uint16(d.c.bus.Read(b+1))<<8 | uint16(d.c.bus.Read(b))
}

func (d *disassembler) signed() int32 {
	return int32(int16(d.word()))
}

func (d *disassembler) long() uint32 {
	lo := d.word()
	return uint32(d.word())<<16 | uint32(lo)
}

func regName(r uint16) string {
	n := r & 0x0F
	switch {
	case n == 15:
		return "SP"
	case r&0x10 != 0:
		return fmt.Sprintf("B%d", n)
	default:
		return fmt.Sprintf("A%d", n)
	}
}

// Disassemble decodes the instruction at the bit address pc. The length is
// in bits.
func (c *CPU) Disassemble(pc uint32) (string, int) {
	d := &disassembler{c: c, pc: pc &^ 0xF}
	op := d.word()
	text := d.decode(op)
	return text, int(d.pc - pc&^0xF)
}

func (d *disassembler) decode(op uint16) string {
	rd := regName(op & 0x1F)
	rs := regName(op&0x10 | (op>>5)&0x0F)
	k := uint32(op>>5) & 0x1F
	f := (op >> 9) & 1

	switch op >> 12 {
	case 0x0:
		return d.decodeMisc(op, rd)
	case 0x1:
		names := [4]string{"ADDK", "SUBK", "MOVK", "BTST"}
		n := (op >> 10) & 3
		if n == 3 {
			return fmt.Sprintf("BTST %d,%s", 31-k, rd)
		}
		return fmt.Sprintf("%s %d,%s", names[n], constant(k), rd)
	case 0x2, 0x3:
		switch n := (op >> 10) & 7; n {
		case 0, 1, 4:
			return fmt.Sprintf("%s %d,%s", [5]string{"SLA", "SLL", "", "", "RL"}[n], k, rd)
		case 2, 3:
			return fmt.Sprintf("%s %d,%s", [4]string{"", "", "SRA", "SRL"}[n], -k&0x1F, rd)
		case 6, 7:
			target := d.pc + k<<4
			if op&0x0400 != 0 {
				target = d.pc - k<<4
			}
			return fmt.Sprintf("DSJS %s,%s", rd, hex32(target))
		}
	case 0x4, 0x5, 0x6, 0x7:
		names := [24]string{
			"ADD", "ADDC", "SUB", "SUBB", "CMP", "BTST", "MOVE", "MOVE",
			"AND", "ANDN", "OR", "XOR", "DIVS", "DIVU", "MPYS", "MPYU",
			"SLA", "SLL", "SRA", "SRL", "RL", "LMO", "MODS", "MODU",
		}
		n := (op>>9)&0x3F - 0x20
		if n >= uint16(len(names)) {
			break
		}
		if n == 7 {
			rd = regName((op ^ 0x10) & 0x1F)
		}
		return fmt.Sprintf("%s %s,%s", names[n], rs, rd)
	case 0x8, 0x9, 0xA, 0xB:
		return d.decodeMove(op, rs, rd, f)
	case 0xC:
		cc := conditionNames[(op>>8)&0x0F]
		switch op & 0xFF {
		case 0x00:
			disp := d.signed()
			return fmt.Sprintf("JR%s %s", cc, hex32(d.pc+uint32(disp)<<4))
		case 0x80:
			return fmt.Sprintf("JA%s %s", cc, hex32(d.long()))
		default:
			return fmt.Sprintf("JR%s %s", cc, hex32(d.pc+uint32(int32(int8(op)))<<4))
		}
	case 0xD:
		if op&0xFDE0 == 0xD500 {
			return fmt.Sprintf("EXGF %s,%d", rd, f)
		}
		if op&0xFF7F == 0xDF1A {
			return blockName(op)
		}
	case 0xE:
		switch (op >> 9) & 7 {
		case 0:
			return fmt.Sprintf("ADDXY %s,%s", rs, rd)
		case 1:
			return fmt.Sprintf("SUBXY %s,%s", rs, rd)
		case 2:
			return fmt.Sprintf("CMPXY %s,%s", rs, rd)
		case 3, 4:
			return fmt.Sprintf("%s %s,%s", blockName(op), rs, rd)
		case 6:
			return fmt.Sprintf("MOVX %s,%s", rs, rd)
		case 7:
			return fmt.Sprintf("MOVY %s,%s", rs, rd)
		}
	case 0xF:
		switch (op >> 9) & 7 {
		case 0:
			return fmt.Sprintf("PIXT %s,*%s.XY", rs, rd)
		case 1:
			return fmt.Sprintf("PIXT *%s.XY,%s", rs, rd)
		case 2:
			return fmt.Sprintf("PIXT *%s.XY,*%s.XY", rs, rd)
		case 3:
			return fmt.Sprintf("DRAV %s,%s", rs, rd)
		case 4:
			return fmt.Sprintf("PIXT %s,*%s", rs, rd)
		case 5:
			return fmt.Sprintf("PIXT *%s,%s", rs, rd)
		case 6:
			return fmt.Sprintf("PIXT *%s,*%s", rs, rd)
		}
	}
	return fmt.Sprintf("DW >%04X", op)
}

var miscNames = map[uint16]string{
	0x0100: "EMU", 0x01C0: "POPST", 0x01E0: "PUSHST", 0x0300: "NOP", 0x0320: "CLRC",
	0x0360: "DINT", 0x0940: "RETI", 0x0D60: "EINT", 0x0DE0: "SETC",
}

var miscRegisterNames = map[uint16]string{
	0x0020: "REV", 0x0120: "EXGPC", 0x0140: "GETPC", 0x0160: "JUMP", 0x0180: "GETST",
	0x01A0: "PUTST", 0x0380: "ABS", 0x03A0: "NEG", 0x03C0: "NEGB", 0x03E0: "NOT", 0x0920: "CALL",
}

func (d *disassembler) decodeMisc(op uint16, rd string) string {
	if name, ok := miscNames[op]; ok {
		return name
	}
	if _, ok := blockNames[op]; ok {
		return blockName(op)
	}
	group := op & 0xFFE0
	if name, ok := miscRegisterNames[group]; ok {
		return fmt.Sprintf("%s %s", name, rd)
	}
	f := (op >> 9) & 1
	switch group {
	case 0x0500, 0x0700:
		return fmt.Sprintf("SEXT %s,%d", rd, f)
	case 0x0520, 0x0720:
		return fmt.Sprintf("ZEXT %s,%d", rd, f)
	case 0x0540, 0x0560, 0x0740, 0x0760:
		return fmt.Sprintf("SETF %d,%d,%d", op&0x1F, (op>>5)&1, f)
	case 0x0900:
		return fmt.Sprintf("TRAP %d", op&0x1F)
	case 0x0960:
		return fmt.Sprintf("RETS %d", op&0x1F)
	case 0x0980:
		return fmt.Sprintf("MMTM %s,>%04X", rd, d.word())
	case 0x09A0:
		return fmt.Sprintf("MMFM %s,>%04X", rd, d.word())
	case 0x09C0:
		return fmt.Sprintf("MOVI >%X,%s", uint32(d.signed()), rd)
	case 0x09E0:
		return fmt.Sprintf("MOVI >%X,%s", d.long(), rd)
	case 0x0B00:
		return fmt.Sprintf("ADDI >%X,%s", uint32(d.signed()), rd)
	case 0x0B20:
		return fmt.Sprintf("ADDI >%X,%s", d.long(), rd)
	case 0x0B40:
		return fmt.Sprintf("CMPI >%X,%s", ^uint32(d.signed()), rd)
	case 0x0B60:
		return fmt.Sprintf("CMPI >%X,%s", ^d.long(), rd)
	case 0x0B80:
		return fmt.Sprintf("ANDI >%X,%s", ^d.long(), rd)
	case 0x0BA0:
		return fmt.Sprintf("ORI >%X,%s", d.long(), rd)
	case 0x0BC0:
		return fmt.Sprintf("XORI >%X,%s", d.long(), rd)
	case 0x0BE0:
		return fmt.Sprintf("SUBI >%X,%s", ^uint32(d.signed()), rd)
	case 0x0D00:
		return fmt.Sprintf("SUBI >%X,%s", ^d.long(), rd)
	case 0x0D20:
		if op == 0x0D3F {
			disp := d.signed()
			return fmt.Sprintf("CALLR %s", hex32(d.pc+uint32(disp)<<4))
		}
	case 0x0D40:
		if op == 0x0D5F {
			return fmt.Sprintf("CALLA %s", hex32(d.long()))
		}
	case 0x0D80, 0x0DA0, 0x0DC0:
		name := map[uint16]string{0x0D80: "DSJ", 0x0DA0: "DSJEQ", 0x0DC0: "DSJNE"}[group]
		disp := d.signed()
		return fmt.Sprintf("%s %s,%s", name, rd, hex32(d.pc+uint32(disp)<<4))
	}
	return fmt.Sprintf("DW >%04X", op)
}

func (d *disassembler) decodeMove(op uint16, rs, rd string, f uint16) string {
	disp := func() string { return fmt.Sprintf(">%X", uint16(d.word())) }
	switch (op >> 10) & 0x0F {
	case 0x0:
		return fmt.Sprintf("MOVE %s,*%s,%d", rs, rd, f)
	case 0x1:
		return fmt.Sprintf("MOVE *%s,%s,%d", rs, rd, f)
	case 0x2:
		return fmt.Sprintf("MOVE *%s,*%s,%d", rs, rd, f)
	case 0x3:
		if f == 0 {
			return fmt.Sprintf("MOVB %s,*%s", rs, rd)
		}
		return fmt.Sprintf("MOVB *%s,%s", rs, rd)
	case 0x4:
		return fmt.Sprintf("MOVE %s,*%s+,%d", rs, rd, f)
	case 0x5:
		return fmt.Sprintf("MOVE *%s+,%s,%d", rs, rd, f)
	case 0x6:
		return fmt.Sprintf("MOVE *%s+,*%s+,%d", rs, rd, f)
	case 0x7:
		if f == 0 {
			return fmt.Sprintf("MOVB *%s,*%s", rs, rd)
		}
	case 0x8:
		return fmt.Sprintf("MOVE %s,-*%s,%d", rs, rd, f)
	case 0x9:
		return fmt.Sprintf("MOVE -*%s,%s,%d", rs, rd, f)
	case 0xA:
		return fmt.Sprintf("MOVE -*%s,-*%s,%d", rs, rd, f)
	case 0xB:
		if f == 0 {
			return fmt.Sprintf("MOVB %s,*%s(%s)", rs, rd, disp())
		}
		return fmt.Sprintf("MOVB *%s(%s),%s", rs, disp(), rd)
	case 0xC:
		return fmt.Sprintf("MOVE %s,*%s(%s),%d", rs, rd, disp(), f)
	case 0xD:
		return fmt.Sprintf("MOVE *%s(%s),%s,%d", rs, disp(), rd, f)
	case 0xE:
		src := disp()
		return fmt.Sprintf("MOVE *%s(%s),*%s(%s),%d", rs, src, rd, disp(), f)
	case 0xF:
		if f == 0 {
			src := disp()
			return fmt.Sprintf("MOVB *%s(%s),*%s(%s)", rs, src, rd, disp())
		}
	}
	return fmt.Sprintf("DW >%04X", op)
}
