// Package elfload implements the ELF32 loader and user-program runner
// (§4.6): header/program-header decode, segment placement into a single
// heap allocation, the System V i386 initial-stack layout, and the
// commit/exit/fault-recovery handoff into and back out of user mode.
//
// Headers are decoded by hand, byte by byte, rather than through
// debug/elf: the teacher's loadAndRunKmazarin/parseEmbeddedKmazarin
// (mazboot/golang/main/kernel.go) do the same for the embedded ELF64
// image it boots, for the same reason — this code runs before there is
// a working allocator-backed Go runtime to trust debug/elf's io.Reader
// and reflection-heavy parsing with.
package elfload

import "github.com/kuzuos/kuzuos/internal/kerrors"

const (
	elfMagic0 = 0x7F
	elfMagic1 = 'E'
	elfMagic2 = 'L'
	elfMagic3 = 'F'

	classELF32  = 1
	dataLSB     = 1
	evCurrent   = 1
	etExec      = 2
	etDyn       = 3
	emI386      = 3
	ehdrSize    = 52
	phdrSize    = 32
	ptLoad      = 1
	ptInterp    = 3
	pageSize    = 4096
	pageMask    = pageSize - 1
)

// ehdr is the subset of Elf32_Ehdr the loader needs (§4.6 step 1).
type ehdr struct {
	entry   uint32
	phoff   uint32
	phentsz uint16
	phnum   uint16
	etype   uint16
}

// phdr is the subset of Elf32_Phdr the loader needs (§4.6 steps 2-4).
type phdr struct {
	ptype  uint32
	offset uint32
	vaddr  uint32
	filesz uint32
	memsz  uint32
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

// parseEhdr validates and decodes an Elf32_Ehdr (§4.6 step 1: magic,
// 32-bit class, current version, type in {ET_EXEC, ET_DYN}, machine
// i386).
func parseEhdr(data []byte) (ehdr, error) {
	if len(data) < ehdrSize {
		return ehdr{}, kerrors.NewBadELF("file too small for an ELF header (%d bytes)", len(data))
	}
	if data[0] != elfMagic0 || data[1] != elfMagic1 || data[2] != elfMagic2 || data[3] != elfMagic3 {
		return ehdr{}, kerrors.NewBadELF("bad magic")
	}
	if data[4] != classELF32 {
		return ehdr{}, kerrors.NewBadELF("not a 32-bit object (EI_CLASS=%d)", data[4])
	}
	if data[5] != dataLSB {
		return ehdr{}, kerrors.NewBadELF("not little-endian (EI_DATA=%d)", data[5])
	}
	if data[6] != evCurrent {
		return ehdr{}, kerrors.NewBadELF("bad EI_VERSION=%d", data[6])
	}
	etype := le16(data, 0x10)
	if etype != etExec && etype != etDyn {
		return ehdr{}, kerrors.NewBadELF("e_type=%d is neither ET_EXEC nor ET_DYN", etype)
	}
	machine := le16(data, 0x12)
	if machine != emI386 {
		return ehdr{}, kerrors.NewBadELF("e_machine=%d is not EM_386", machine)
	}
	return ehdr{
		entry:   le32(data, 0x18),
		phoff:   le32(data, 0x1C),
		phentsz: le16(data, 0x2A),
		phnum:   le16(data, 0x2C),
		etype:   etype,
	}, nil
}

// parsePhdrs decodes e_phnum program headers starting at e_phoff (§4.6
// step 2). phentsize smaller than the fields this loader reads, or a
// table running off the end of the file, is rejected rather than
// silently truncated.
func parsePhdrs(data []byte, h ehdr) ([]phdr, error) {
	if h.phentsz < phdrSize {
		return nil, kerrors.NewBadELF("e_phentsize=%d smaller than Elf32_Phdr", h.phentsz)
	}
	if h.phnum == 0 {
		return nil, kerrors.NewBadELF("e_phnum is zero: nothing to load")
	}
	out := make([]phdr, 0, h.phnum)
	for i := uint16(0); i < h.phnum; i++ {
		off := int(h.phoff) + int(i)*int(h.phentsz)
		if off < 0 || off+phdrSize > len(data) {
			return nil, kerrors.NewBadELF("program header %d out of bounds", i)
		}
		out = append(out, phdr{
			ptype:  le32(data, off+0x00),
			offset: le32(data, off+0x04),
			vaddr:  le32(data, off+0x08),
			filesz: le32(data, off+0x10),
			memsz:  le32(data, off+0x14),
		})
	}
	return out, nil
}

func truncPage(v uint32) uint32 { return v &^ pageMask }
func roundPage(v uint32) uint32 { return (v + pageMask) &^ pageMask }

func findInterp(data []byte, phdrs []phdr) (string, bool, error) {
	for _, p := range phdrs {
		if p.ptype != ptInterp {
			continue
		}
		end := int(p.offset) + int(p.filesz)
		if int(p.offset) < 0 || end > len(data) || end < int(p.offset) {
			return "", false, kerrors.NewBadELF("PT_INTERP out of bounds")
		}
		raw := data[p.offset:end]
		n := len(raw)
		for n > 0 && raw[n-1] == 0 {
			n--
		}
		return string(raw[:n]), true, nil
	}
	return "", false, nil
}
