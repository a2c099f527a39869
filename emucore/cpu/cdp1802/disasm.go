package cdp1802

import "fmt"

var (
	shortBranches = [16]string{"BR", "BQ", "BZ", "BDF", "B1", "B2", "B3", "B4", "SKP", "BNQ", "BNZ", "BNF", "BN1", "BN2", "BN3", "BN4"}
	longBranches  = [16]string{"LBR", "LBQ", "LBZ", "LBDF", "NOP", "LSNQ", "LSNZ", "LSNF", "LSKP", "LBNQ", "LBNZ", "LBNF", "LSIE", "LSQ", "LSZ", "LSDF"}
	controlOps    = [16]string{"RET", "DIS", "LDXA", "STXD", "ADC", "SDB", "SHRC", "SMB", "SAV", "MARK", "REQ", "SEQ", "ADCI", "SDBI", "SHLC", "SMBI"}
	aluOps        = [16]string{"LDX", "OR", "AND", "XOR", "ADD", "SD", "SHR", "SM", "LDI", "ORI", "ANI", "XRI", "ADI", "SDI", "SHL", "SMI"}
)

// Disassemble decodes the instruction at pc with plain bus reads.
func (c *CPU) Disassemble(pc uint32) (string, int) {
	at := uint16(pc)
	opcode := c.bus.Read(uint32(at))
	i, n := opcode>>4, opcode&0x0F
	b1 := c.bus.Read(uint32(at + 1))
	b2 := c.bus.Read(uint32(at + 2))

	switch i {
	case 0x0:
		if n == 0 {
			return "IDL", 1
		}
		return fmt.Sprintf("LDN R%X", n), 1
	case 0x1:
		return fmt.Sprintf("INC R%X", n), 1
	case 0x2:
		return fmt.Sprintf("DEC R%X", n), 1
	case 0x3:
		if n == 0x8 {
			return "SKP", 1
		}
		target := (at+1)&0xFF00 | uint16(b1)
		return fmt.Sprintf("%s $%04X", shortBranches[n], target), 2
	case 0x4:
		return fmt.Sprintf("LDA R%X", n), 1
	case 0x5:
		return fmt.Sprintf("STR R%X", n), 1
	case 0x6:
		switch {
		case n == 0:
			return "IRX", 1
		case n < 8:
			return fmt.Sprintf("OUT %d", n), 1
		case n == 8:
			return "*$68", 1
		default:
			return fmt.Sprintf("INP %d", n&0x07), 1
		}
	case 0x7:
		if n >= 0xC && n != 0xE {
			return fmt.Sprintf("%s #$%02X", controlOps[n], b1), 2
		}
		return controlOps[n], 1
	case 0x8:
		return fmt.Sprintf("GLO R%X", n), 1
	case 0x9:
		return fmt.Sprintf("GHI R%X", n), 1
	case 0xA:
		return fmt.Sprintf("PLO R%X", n), 1
	case 0xB:
		return fmt.Sprintf("PHI R%X", n), 1
	case 0xC:
		if n&0x04 == 0 && n != 0x8 {
			return fmt.Sprintf("%s $%02X%02X", longBranches[n], b1, b2), 3
		}
		return longBranches[n], 1
	case 0xD:
		return fmt.Sprintf("SEP R%X", n), 1
	case 0xE:
		return fmt.Sprintf("SEX R%X", n), 1
	default:
		if n >= 0x8 && n != 0xE {
			return fmt.Sprintf("%s #$%02X", aluOps[n], b1), 2
		}
		return aluOps[n], 1
	}
}
