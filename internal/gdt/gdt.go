// Package gdt installs the kernel's flat GDT and TSS, following the same
// "build a packed descriptor table as a Go array, then hand its address to
// a linked assembly primitive" idiom the teacher uses for page tables in
// mazboot/golang/main/mmu.go (there: PTE bit constants assembled into a
// table and loaded via a single privileged instruction; here: descriptor
// bit constants assembled into a GDT and loaded via LGDT).
package gdt

import (
	"unsafe"

	"github.com/kuzuos/kuzuos/internal/asm"
)

// Selector indices fixed by §3.
const (
	SelKernelCode uint16 = 0x08
	SelKernelData uint16 = 0x10
	SelUserCode   uint16 = 0x1B // RPL 3 baked into the low two bits
	SelUserData   uint16 = 0x23
	SelTSS        uint16 = 0x28
)

const entryCount = 6 // null, kcode, kdata, ucode, udata, tss

// access byte bits (standard IA-32 segment descriptor).
const (
	accPresent  = 1 << 7
	accRing0    = 0 << 5
	accRing3    = 3 << 5
	accCodeData = 1 << 4
	accExec     = 1 << 3
	accDirConf  = 1 << 2
	accRW       = 1 << 1
	accTSSType  = 0x9 // 32-bit TSS, available
)

// flags nibble (granularity + size), packed into the high nibble of the
// limit-high byte.
const (
	flagGranularity4K = 1 << 7
	flag32Bit         = 1 << 6
)

type descriptor struct {
	limitLow   uint16
	baseLow    uint16
	baseMid    uint8
	access     uint8
	limitFlags uint8
	baseHigh   uint8
}

func packDescriptor(base uint32, limit uint32, access uint8, flags uint8) descriptor {
	return descriptor{
		limitLow:   uint16(limit & 0xFFFF),
		baseLow:    uint16(base & 0xFFFF),
		baseMid:    uint8((base >> 16) & 0xFF),
		access:     access,
		limitFlags: uint8((limit>>16)&0x0F) | (flags & 0xF0),
		baseHigh:   uint8((base >> 24) & 0xFF),
	}
}

// TSS is the 32-bit Task State Segment. Only the fields the kernel actually
// uses (esp0/ss0, and iomap base disabling the I/O bitmap) are meaningful;
// the rest exist because hardware reads a fixed-size structure.
type TSS struct {
	prevTask       uint32
	Esp0           uint32
	Ss0            uint32
	esp1, ss1      uint32
	esp2, ss2      uint32
	cr3            uint32
	eip            uint32
	eflags         uint32
	eax, ecx, edx, ebx uint32
	esp, ebp, esi, edi uint32
	es, cs, ss, ds, fs, gs uint32
	ldt            uint32
	trap           uint16
	ioMapBase      uint16
}

// Table owns the GDT array and the single TSS it installs, matching §3's
// invariant that there is exactly one TSS for the one kernel stack that is
// ever live (no concurrent processes).
type Table struct {
	entries [entryCount]descriptor
	tss     TSS
}

// gdtr is the 6-byte LGDT operand {limit uint16, base uint32} with no
// padding between the fields, which a two-field Go struct would insert.
type gdtr [6]byte

func packGDTR(limit uint16, base uint32) gdtr {
	return gdtr{byte(limit), byte(limit >> 8), byte(base), byte(base >> 8), byte(base >> 16), byte(base >> 24)}
}

// New builds the five flat descriptors plus the TSS descriptor and loads
// them. kernelStackTop is the esp0 the TSS should point at until the first
// call to SetKernelStack.
func New(kernelStackTop uintptr) *Table {
	t := &Table{}

	t.entries[0] = descriptor{} // null descriptor, §3 invariant

	t.entries[SelKernelCode/8] = packDescriptor(0, 0xFFFFF,
		accPresent|accRing0|accCodeData|accExec|accRW, flagGranularity4K|flag32Bit)
	t.entries[SelKernelData/8] = packDescriptor(0, 0xFFFFF,
		accPresent|accRing0|accCodeData|accRW, flagGranularity4K|flag32Bit)
	t.entries[SelUserCode/8] = packDescriptor(0, 0xFFFFF,
		accPresent|accRing3|accCodeData|accExec|accRW, flagGranularity4K|flag32Bit)
	t.entries[SelUserData/8] = packDescriptor(0, 0xFFFFF,
		accPresent|accRing3|accCodeData|accRW, flagGranularity4K|flag32Bit)

	t.tss.Ss0 = uint32(SelKernelData)
	t.tss.Esp0 = uint32(kernelStackTop)
	t.tss.ioMapBase = uint16(unsafe.Sizeof(TSS{})) // no I/O bitmap

	tssBase := uint32(uintptr(unsafe.Pointer(&t.tss)))
	tssLimit := uint32(unsafe.Sizeof(TSS{})) - 1
	t.entries[SelTSS/8] = packDescriptor(tssBase, tssLimit,
		accPresent|accRing0|accTSSType, 0)

	r := packGDTR(uint16(unsafe.Sizeof(t.entries)-1), uint32(uintptr(unsafe.Pointer(&t.entries[0]))))
	asm.LoadGDT(uintptr(unsafe.Pointer(&r)))
	asm.ReloadSegments(SelKernelCode, SelKernelData)
	asm.LoadTSS(SelTSS)

	return t
}

// SetKernelStack updates TSS.ss0/esp0 so the next ring3->ring0 transition
// lands on the kernel stack the runner picked for the program about to be
// launched (§4.2).
func (t *Table) SetKernelStack(ss uint16, esp uintptr) {
	t.tss.Ss0 = uint32(ss)
	t.tss.Esp0 = uint32(esp)
}

// KernelStack returns the esp0 currently installed, mainly for tests that
// assert §8 scenario 6 (reentrant run sees the same initial esp0).
func (t *Table) KernelStack() uintptr {
	return uintptr(t.tss.Esp0)
}
