package boot

import (
	"strconv"
	"unsafe"

	"github.com/kuzuos/kuzuos/internal/asm"
	"github.com/kuzuos/kuzuos/internal/banner"
	"github.com/kuzuos/kuzuos/internal/console"
	"github.com/kuzuos/kuzuos/internal/elfload"
	"github.com/kuzuos/kuzuos/internal/fs"
	"github.com/kuzuos/kuzuos/internal/gdt"
	"github.com/kuzuos/kuzuos/internal/heap"
	"github.com/kuzuos/kuzuos/internal/idt"
	"github.com/kuzuos/kuzuos/internal/kbd"
	"github.com/kuzuos/kuzuos/internal/shell"
	"github.com/kuzuos/kuzuos/internal/syscall"
	"github.com/kuzuos/kuzuos/internal/trap"
)

// KernelMain is the single control-flow table §2 names: every subsystem
// package is constructed here, in the order §4 fixes (the heap before
// anything that allocates from it; GDT/TSS before the IDT, since a gate's
// selector field names a GDT entry; the IDT loaded and the PIC
// remapped-but-fully-masked before Sti, so nothing can fire on a vector
// the dispatcher isn't wired for yet). cmd/kernel's entry stub calls this
// once, interrupts still disabled, right after switching onto its own
// stack — placing Header within the image's first 32KiB so the
// bootloader finds it is a linker-script concern outside what this
// package can guarantee (see DESIGN.md).
func KernelMain(multibootMagic, multibootInfo uint32) {
	h := heap.Init(heapStart, heapSize)
	gdt.New(kernelStackTop)

	runnerState := &trap.RunnerState{}
	dispatcher := &trap.Dispatcher{
		Runner:     runnerState,
		EOI:        idt.EOI,
		ExitTramp:  asm.ExitTrampoline,
		FaultTramp: asm.FaultTrampoline,
	}

	out := console.Global()
	dispatcher.LogFault = func(vector int, fromUser bool) {
		out.Printf("fault: vector=%d fromUser=%s\n", vector, strconv.FormatBool(fromUser))
	}
	dispatcher.HaltKernel = func(vector int) {
		out.Printf("unrecoverable fault in kernel context: vector=%d\n", vector)
		for {
			asm.Hlt()
		}
	}

	// Installed before the IDT is loaded: an interrupt could fire the
	// instant LoadIDT's LIDT instruction retires.
	asm.SetTrapHandler(func(framePtr uintptr) {
		dispatcher.Dispatch(trap.FrameFromPointer(unsafe.Pointer(framePtr)))
	})
	idt.New(asm.DefaultStubTable{}, gdt.SelKernelCode)

	fileSystem := fs.New()
	kbdDriver := kbd.New()
	runner := &elfload.Runner{Heap: h, FS: fileSystem, State: runnerState}

	machine := &Machine{
		Console: out,
		Kbd:     kbdDriver,
		FS:      fileSystem,
		Heap:    h,
		Runner:  runner,
		brk:     DefaultBreak,
	}
	dispatcher.Syscall = (&syscall.Handler{
		Machine: machine,
		FDs:     syscall.NewFDTable(),
		Runner:  runnerState,
	}).Handle

	anim := banner.New(0, 0)
	sink := &bannerSink{out: out}

	sh := shell.New(fileSystem, out)
	sh.Runner = runner
	sh.Rebooter = kbdRebooter{}
	sh.Banner = anim

	asm.Sti()
	out.Printf("KuzuOS booting (multiboot magic=0x%x info=0x%x)\n", multibootMagic, multibootInfo)
	sh.Prompt()

	// The shell's read/dispatch loop is the kernel's only steady state
	// (§5): poll the keyboard, feed whatever arrived to the shell, tick
	// the banner animation once per spin, then idle until the next
	// interrupt. This is the loop's "suspension point" the spec names;
	// hlt only returns control here once something (a timer, a keypress,
	// nothing in this design yet) wakes the CPU back up.
	for {
		if b, ok := kbdDriver.Poll(); ok {
			if sh.FeedKey(b) {
				break
			}
		}
		anim.Tick(sink)
		out.WriteSerial(asm.Outb)
		asm.Hlt()
	}

	kbd.Reboot()
	for {
		asm.Hlt()
	}
}
