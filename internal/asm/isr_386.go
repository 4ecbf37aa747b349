//go:build 386

package asm

// The IDT has no way to tell a handler which vector fired (unlike, say, the
// GIC's ESR on the teacher's AArch64 target); the CPU just jumps to
// whatever code address the gate names. So every vector needs its own
// landing pad that records its own number before falling into shared
// dispatch logic. isr_386.s implements one such stub per CPU exception
// (0-31), the seven of which the CPU itself pushes an error code for
// (8, 10, 11, 12, 13, 14, 17) handled without an extra dummy push, one for
// the syscall gate (0x80), sixteen for the remapped PIC lines (0x20-0x2F),
// and a single shared stub for every other, unused vector.
func isrDefaultStub()

func isr0Stub()
func isr1Stub()
func isr2Stub()
func isr3Stub()
func isr4Stub()
func isr5Stub()
func isr6Stub()
func isr7Stub()
func isr8Stub()
func isr9Stub()
func isr10Stub()
func isr11Stub()
func isr12Stub()
func isr13Stub()
func isr14Stub()
func isr15Stub()
func isr16Stub()
func isr17Stub()
func isr18Stub()
func isr19Stub()
func isr20Stub()
func isr21Stub()
func isr22Stub()
func isr23Stub()
func isr24Stub()
func isr25Stub()
func isr26Stub()
func isr27Stub()
func isr28Stub()
func isr29Stub()
func isr30Stub()
func isr31Stub()
func isrSyscallStub()
func irq0Stub()
func irq1Stub()
func irq2Stub()
func irq3Stub()
func irq4Stub()
func irq5Stub()
func irq6Stub()
func irq7Stub()
func irq8Stub()
func irq9Stub()
func irq10Stub()
func irq11Stub()
func irq12Stub()
func irq13Stub()
func irq14Stub()
func irq15Stub()

// stubAddrs maps every one of the 256 vectors to a stub's entry address.
// Vectors with no explicit handler above fall back to isrDefaultStub, a
// bare IRET, matching the "everything else at DPL0 pointing at a
// generic/benign stub" comment in internal/idt.New.
var stubAddrs [256]uintptr

func init() {
	for v := range stubAddrs {
		stubAddrs[v] = funcAddr(isrDefaultStub)
	}

	exceptions := [32]func(){
		isr0Stub, isr1Stub, isr2Stub, isr3Stub, isr4Stub, isr5Stub, isr6Stub, isr7Stub,
		isr8Stub, isr9Stub, isr10Stub, isr11Stub, isr12Stub, isr13Stub, isr14Stub, isr15Stub,
		isr16Stub, isr17Stub, isr18Stub, isr19Stub, isr20Stub, isr21Stub, isr22Stub, isr23Stub,
		isr24Stub, isr25Stub, isr26Stub, isr27Stub, isr28Stub, isr29Stub, isr30Stub, isr31Stub,
	}
	for v, fn := range exceptions {
		stubAddrs[v] = funcAddr(fn)
	}

	stubAddrs[0x80] = funcAddr(isrSyscallStub)

	irqs := [16]func(){
		irq0Stub, irq1Stub, irq2Stub, irq3Stub, irq4Stub, irq5Stub, irq6Stub, irq7Stub,
		irq8Stub, irq9Stub, irq10Stub, irq11Stub, irq12Stub, irq13Stub, irq14Stub, irq15Stub,
	}
	for i, fn := range irqs {
		stubAddrs[0x20+i] = funcAddr(fn)
	}
}

// DefaultStubTable implements idt.StubTable over the assembly landing pads
// above. internal/boot's KernelMain is the only caller on real hardware;
// tests of internal/idt supply their own fake instead.
type DefaultStubTable struct{}

func (DefaultStubTable) StubAddr(vector int) uintptr { return stubAddrs[vector] }
