package asm

import "unsafe"

// trapHandler is the Go-level interrupt dispatcher every ISR stub in
// isr_386.s calls into once it has built a trap.Frame-shaped register
// block. internal/boot installs this during KernelMain, wiring it to
// (*trap.Dispatcher).Dispatch; nothing in this package knows about
// internal/trap so the dependency only runs one way.
var trapHandler func(framePtr uintptr)

// SetTrapHandler installs the function every ISR stub's commonStub calls
// into. Must be set before asm.LoadIDT runs, since an interrupt could fire
// the instant the IDT is live.
func SetTrapHandler(fn func(framePtr uintptr)) {
	trapHandler = fn
}

// trapEntry is the symbol isr_386.s's commonStub calls by name
// (·trapEntry(SB)) after pushing the frame. Kept tiny, a single nil check
// before the handler call, since it runs with interrupts still masked by
// the gate's own entry, the same constraint the teacher's
// exceptions.go dispatch trampoline observes.
//
//go:nosplit
func trapEntry(framePtr uintptr) {
	if trapHandler != nil {
		trapHandler(framePtr)
	}
}

// funcAddr recovers the code address backing a zero-argument top-level Go
// function value. A Go func value is a pointer to a structure whose first
// word is the code pointer for a plain (non-closure) top-level function,
// which is all isr_386.s's stub symbols ever are; this is the same
// func-value-to-PC trick used throughout the runtime/pprof ecosystem
// (the inverse of runtime.FuncForPC, which the teacher's traceback.go uses
// for PC-to-function lookup).
func funcAddr(fn func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&fn))
}
