package trap

import "testing"

func newLiveRunner() *RunnerState {
	r := &RunnerState{}
	r.Commit(0x9000, 0x9100, 0x4000) // fake kernel esp/ebp/resume label
	return r
}

func TestSyscallExitRewritesEIPAndClearsRunner(t *testing.T) {
	r := newLiveRunner()
	var resumed bool
	d := &Dispatcher{
		Runner: r,
		Syscall: func(f *Frame) {
			r.RequestExit()
			f.SetSyscallResult(0)
		},
		ExitTramp: func(esp, ebp, label uintptr) { resumed = true },
	}

	f := &Frame{IntNo: SyscallVector, EIP: 0x08048123, CS: 0x1B}
	d.Dispatch(f)

	if r.Live() {
		t.Fatal("runner still live after exit dispatch")
	}
	if f.EIP != 0x4000 {
		t.Fatalf("EIP not rewritten to resume label: got %#x", f.EIP)
	}
	if !resumed {
		t.Fatal("exit trampoline never invoked")
	}
}

func TestSyscallWithoutExitLeavesFrameAlone(t *testing.T) {
	r := newLiveRunner()
	d := &Dispatcher{
		Runner: r,
		Syscall: func(f *Frame) {
			f.SetSyscallResult(42)
		},
	}
	f := &Frame{IntNo: SyscallVector, EIP: 0x08048123}
	d.Dispatch(f)

	if !r.Live() {
		t.Fatal("runner should still be live: no exit requested")
	}
	if f.EIP != 0x08048123 {
		t.Fatalf("EIP mutated without an exit request: %#x", f.EIP)
	}
	if f.EAX != 42 {
		t.Fatalf("eax = %d, want 42", f.EAX)
	}
}

func TestFaultWithLiveProgramRecovers(t *testing.T) {
	r := newLiveRunner()
	var loggedVector int
	var haltCalled bool
	var resumeArgs [3]uintptr
	d := &Dispatcher{
		Runner:     r,
		LogFault:   func(vector int, fromUser bool) { loggedVector = vector },
		HaltKernel: func(vector int) { haltCalled = true },
		FaultTramp: func(esp, ebp, label uintptr) { resumeArgs = [3]uintptr{esp, ebp, label} },
	}

	f := &Frame{IntNo: 0, CS: 0x1B} // vector 0: divide by zero
	d.Dispatch(f)

	if haltCalled {
		t.Fatal("fault with a live program must never halt the kernel")
	}
	if loggedVector != 0 {
		t.Fatalf("logged vector = %d, want 0", loggedVector)
	}
	if r.Live() {
		t.Fatal("runner must be cleared after fault recovery")
	}
	if resumeArgs[0] != 0x9000 || resumeArgs[1] != 0x9100 || resumeArgs[2] != 0x4000 {
		t.Fatalf("trampoline got wrong saved state: %+v", resumeArgs)
	}
}

func TestFaultWithNoProgramHalts(t *testing.T) {
	r := &RunnerState{} // not live
	var haltVector = -1
	d := &Dispatcher{
		Runner:     r,
		HaltKernel: func(vector int) { haltVector = vector },
	}
	f := &Frame{IntNo: 13}
	d.Dispatch(f)

	if haltVector != 13 {
		t.Fatalf("expected fatal halt on vector 13, got haltVector=%d", haltVector)
	}
}

func TestIRQDispatchesEOIOnly(t *testing.T) {
	r := &RunnerState{}
	var eoiVector = -1
	d := &Dispatcher{
		Runner: r,
		EOI:    func(v int) { eoiVector = v },
	}
	f := &Frame{IntNo: 0x28}
	d.Dispatch(f)

	if eoiVector != 0x28 {
		t.Fatalf("EOI vector = %d, want 0x28", eoiVector)
	}
	if r.Live() {
		t.Fatal("IRQ dispatch must not touch runner state")
	}
}

func TestRunnerSymmetryAcrossExitAndFault(t *testing.T) {
	for _, tramp := range []string{"exit", "fault"} {
		r := newLiveRunner()
		d := &Dispatcher{Runner: r}
		if tramp == "exit" {
			d.Syscall = func(f *Frame) { r.RequestExit() }
			d.Dispatch(&Frame{IntNo: SyscallVector})
		} else {
			d.Dispatch(&Frame{IntNo: 6})
		}
		if r.Live() {
			t.Fatalf("%s path left runner live", tramp)
		}
	}
}
