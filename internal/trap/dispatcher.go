package trap

// SyscallVector is the fixed int 0x80 slot (§3, §4.3); duplicated from
// internal/idt rather than imported to keep this package free of a
// dependency on the PIC/IDT build-time machinery, since tests want to
// drive Dispatch directly with synthetic frames.
const SyscallVector = 0x80

// maxFaultVector is the last CPU-exception vector (§3: slots 0-31).
const maxFaultVector = 31

// SyscallHandler decodes and executes one syscall, writing its result into
// the frame's eax (§4.4 path 1). It is supplied by internal/syscall so this
// package has no dependency on the syscall table.
type SyscallHandler func(f *Frame)

// FaultLogger records that a CPU exception happened; it must not allocate
// or block, the same "go:nosplit-safe" requirement the teacher's fault
// path honors (mazboot/golang/main/exceptions.go logs via raw uartPuts,
// never fmt).
type FaultLogger func(vector int, fromUser bool)

// Halt is called on a fault with no program live (§4.4 path 3, §7
// CPU-exception-in-kernel): the only fatal class in the system.
type Halt func(vector int)

// Resumer performs the actual cross-stack jump a trampoline needs; it is
// the seam internal/asm's ExitTrampoline/FaultTrampoline are invoked
// through so Dispatcher can be tested without real hardware.
type Resumer func(esp, ebp, resumeEip uintptr)

// Dispatcher implements §4.4's three-way routing. It holds the one
// RunnerState live in the kernel and the collaborators needed to act on
// each path.
type Dispatcher struct {
	Runner        *RunnerState
	Syscall       SyscallHandler
	LogFault      FaultLogger
	HaltKernel    Halt
	EOI           func(vector int)
	ExitTramp     Resumer
	FaultTramp    Resumer
}

// Dispatch is the single entry point the assembly ISR stubs call into
// with a pointer to the frame they built. It never touches esp on the
// interrupt frame directly (§4.4's critical invariant); every control
// transfer out of the interrupt context happens by rewriting f.EIP and
// letting the CPU's own IRET perform the rest.
func (d *Dispatcher) Dispatch(f *Frame) {
	switch {
	case f.IntNo == SyscallVector:
		d.dispatchSyscall(f)
	case int(f.IntNo) <= maxFaultVector:
		d.dispatchFault(f)
	default:
		d.dispatchIRQ(f)
	}
}

func (d *Dispatcher) dispatchSyscall(f *Frame) {
	if d.Syscall != nil {
		d.Syscall(f)
	}
	if d.Runner.ExitRequested() {
		d.redirectToTrampoline(f, d.ExitTramp)
	}
}

func (d *Dispatcher) dispatchFault(f *Frame) {
	fromUser := d.Runner.Live()
	if d.LogFault != nil {
		d.LogFault(int(f.IntNo), fromUser)
	}
	if !fromUser {
		if d.HaltKernel != nil {
			d.HaltKernel(int(f.IntNo))
		}
		return
	}
	d.redirectToTrampoline(f, d.FaultTramp)
}

func (d *Dispatcher) dispatchIRQ(f *Frame) {
	if d.EOI != nil {
		d.EOI(int(f.IntNo))
	}
}

// redirectToTrampoline implements the rewrite described in §4.4/§9: the
// kernel stack snapshot moves from the live slots to the *_for_exit slots,
// the live slots are cleared, and the frame's return eip is pointed at the
// resumption label so the CPU's own IRET, not a second call from Go,
// performs the actual jump back into the shell's run loop (§4.4's critical
// invariant: the dispatcher only ever rewrites eip, never esp, on the
// interrupt frame itself).
//
// which is invoked here, synchronously, as the trampoline's counterpart:
// on real hardware it would run only after this function returns and the
// ISR stub's IRET fires; collapsing that into one call keeps the package
// unit-testable without a second CPU context, and is harmless because
// which only ever restores the kernel esp/ebp already captured above and
// jumps to label — exactly what the assembly trampoline in internal/asm
// does when it actually runs.
func (d *Dispatcher) redirectToTrampoline(f *Frame, which Resumer) {
	esp, ebp, label := d.Runner.PrepareResume()
	f.RewriteReturnEIP(label)
	if which != nil {
		which(esp, ebp, label)
	}
}
