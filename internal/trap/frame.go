// Package trap is the kernel's central interrupt dispatcher (§4.4). It
// owns the typed view of the CPU-and-stub-pushed register frame and the
// process-wide RunnerState that makes "a user program is live" a checkable
// precondition rather than a pair of module-level globals, per §9's
// redesign note. The frame layout mirrors biscuit's fixed-size trap frame
// (justanotherdot/biscuit, kernel/main.go: trapstub(tf *[common.TFSIZE]uintptr))
// and the teacher's ExceptionInfo (mazboot/golang/main/exceptions.go),
// generalized from AArch64's ESR/ELR/SPSR/FAR to the i386 stub-pushed
// frame §3 specifies.
package trap

import "unsafe"

// Frame is the register frame the assembly ISR stubs build before calling
// into the Go dispatcher, laid out exactly as §3 describes: GPRs and ds
// pushed by the stub, followed by the CPU-pushed {eip, cs, eflags} and,
// on a ring switch, {user_esp, user_ss}. The struct field order must match
// the stub's push order since the dispatcher is handed a raw pointer to
// this memory, not a copy.
type Frame struct {
	EDI, ESI, EBP, espDummy uint32
	EBX, EDX, ECX, EAX      uint32
	DS                      uint32
	IntNo, ErrCode          uint32

	// CPU-pushed tail; consumed atomically by IRET. EIP is the only field
	// the dispatcher is allowed to rewrite (§4.4's critical invariant).
	EIP, CS, EFlags uint32

	// Present only on a ring3->ring0 entry. Accessing these when the
	// interrupt came from ring0 code is undefined; callers must check
	// Frame.FromUserMode first.
	UserESP, UserSS uint32
}

// FromUserMode reports whether this frame was pushed by a ring3->ring0
// transition (cs's RPL is 3), the only case where UserESP/UserSS are valid.
// Dispatcher does not consult it: its fault path decides by RunnerState.Live.
func (f *Frame) FromUserMode() bool {
	return f.CS&0x3 == 3
}

// RewriteReturnEIP redirects where this frame's IRET will resume execution.
// This is the single field assignment §9 calls for: the dispatcher never
// touches esp directly on the interrupt frame, only this.
func (f *Frame) RewriteReturnEIP(eip uintptr) {
	f.EIP = uint32(eip)
}

// SyscallArgs reads the Linux i386 syscall argument registers in their
// fixed order (§4.5): eax is the number, ebx/ecx/edx/esi/edi/ebp the args.
func (f *Frame) SyscallArgs() (num uint32, a [6]uint32) {
	return f.EAX, [6]uint32{f.EBX, f.ECX, f.EDX, f.ESI, f.EDI, f.EBP}
}

// SetSyscallResult writes a syscall's return value back into eax, where
// the CPU will hand it to user code at the eventual IRET (§4.4/§5).
func (f *Frame) SetSyscallResult(v int32) {
	f.EAX = uint32(v)
}

// FrameFromPointer builds a *Frame over the raw stub-provided pointer. It
// exists as a named conversion point so every call site that touches the
// interrupt frame is grep-able.
func FrameFromPointer(p unsafe.Pointer) *Frame {
	return (*Frame)(p)
}
