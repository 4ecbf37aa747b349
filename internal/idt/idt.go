// Package idt builds the 256-entry interrupt descriptor table and remaps
// the 8259 PICs, following the same "build the table as data, then load it
// with one privileged instruction" shape the teacher uses for VBAR_EL1 in
// mazboot/golang/main/exceptions.go (InitializeExceptions). The PIC
// programming sequence and its EOI discipline are grounded on
// justanotherdot/biscuit's irq_unmask/irq_eoi (biscuit kernel/main.go in
// the retrieval pack): mask everything by default, EOI slave-then-master.
package idt

import (
	"unsafe"

	"github.com/kuzuos/kuzuos/internal/asm"
)

const (
	// PIC remap targets, fixed by §4.3/§6.
	masterVector = 0x20
	slaveVector  = 0x28

	picMasterCmd  = 0x20
	picMasterData = 0x21
	picSlaveCmd   = 0xA0
	picSlaveData  = 0xA1

	icw1Init = 0x11
	icw4_8086 = 0x01
)

// gate type/attribute bits for a 32-bit interrupt gate.
const (
	gatePresent  = 1 << 7
	gateDPL0     = 0 << 5
	gateDPL3     = 3 << 5
	gate32BitInt = 0x0E
)

type gate struct {
	offsetLow  uint16
	selector   uint16
	zero       uint8
	typeAttr   uint8
	offsetHigh uint16
}

func packGate(handler uintptr, codeSel uint16, dpl uint8) gate {
	return gate{
		offsetLow:  uint16(handler & 0xFFFF),
		selector:   codeSel,
		zero:       0,
		typeAttr:   gatePresent | (dpl << 5) | gate32BitInt,
		offsetHigh: uint16(handler >> 16),
	}
}

const entryCount = 256

// SyscallVector is the fixed DPL=3 slot (§3, §4.3).
const SyscallVector = 0x80

type Table struct {
	entries [entryCount]gate
}

// idtr is the 6-byte LIDT operand {limit uint16, base uint32} with no
// padding between the fields, which a two-field Go struct would insert.
type idtr [6]byte

func packIDTR(limit uint16, base uint32) idtr {
	return idtr{byte(limit), byte(limit >> 8), byte(base), byte(base >> 8), byte(base >> 16), byte(base >> 24)}
}

// StubTable supplies the assembly entry-stub address for every vector 0-255
// (index 0x80 is the syscall stub, the rest exception/IRQ/benign stubs, per
// §4.3/§4.4). The kernel's boot package builds this from its linked stub
// table; it is passed in rather than hard-coded here so the dispatcher can
// be unit tested with fake stub addresses.
type StubTable interface {
	StubAddr(vector int) uintptr
}

// New builds and loads the IDT: vectors 0-31 at DPL0 (CPU exceptions),
// vector 0x80 at DPL3 (syscall gate, user-callable), everything else at
// DPL0 pointing at a generic/benign stub.
func New(stubs StubTable, codeSel uint16) *Table {
	t := &Table{}
	for v := 0; v < entryCount; v++ {
		dpl := uint8(0)
		if v == SyscallVector {
			dpl = 3
		}
		t.entries[v] = packGate(stubs.StubAddr(v), codeSel, dpl)
	}

	r := packIDTR(uint16(unsafe.Sizeof(t.entries)-1), uint32(uintptr(unsafe.Pointer(&t.entries[0]))))
	asm.LoadIDT(uintptr(unsafe.Pointer(&r)))

	remapPIC()
	return t
}

// remapPIC moves IRQ0-15 to vectors 0x20-0x2F, sets up the cascade and 8086
// mode, then masks every line: IRQs are polled in this design (§4.3), not
// delivered asynchronously, so nothing should fire until a driver
// explicitly unmasks a line.
func remapPIC() {
	asm.Outb(picMasterCmd, icw1Init)
	asm.Outb(picSlaveCmd, icw1Init)

	asm.Outb(picMasterData, masterVector) // ICW2: vector offset
	asm.Outb(picSlaveData, slaveVector)

	asm.Outb(picMasterData, 0x04) // ICW3: slave attached to IRQ2
	asm.Outb(picSlaveData, 0x02)

	asm.Outb(picMasterData, icw4_8086) // ICW4: 8086 mode
	asm.Outb(picSlaveData, icw4_8086)

	asm.Outb(picMasterData, 0xFF) // mask all lines
	asm.Outb(picSlaveData, 0xFF)
}

// UnmaskIRQ clears the mask bit for a single IRQ line (0-15), letting a
// polled driver opt into asynchronous delivery if it ever needs to.
func UnmaskIRQ(irq uint8) {
	if irq < 8 {
		port := uint16(picMasterData)
		mask := asm.Inb(port)
		asm.Outb(port, mask&^(1<<irq))
		return
	}
	port := uint16(picSlaveData)
	mask := asm.Inb(port)
	asm.Outb(port, mask&^(1<<(irq-8)))
}

// EOI acknowledges an IRQ's vector, EOI'ing the slave first when the
// vector came from it, then always the master (§4.3).
func EOI(vector int) {
	if vector >= slaveVector {
		asm.Outb(picSlaveCmd, 0x20)
	}
	asm.Outb(picMasterCmd, 0x20)
}
