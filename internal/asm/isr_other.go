//go:build !386

package asm

// Hosted equivalent of isr_386.go/isr_386.s: there is no real IDT or ISR
// landing pad to build on a hosted GOARCH, so DefaultStubTable just hands
// back deterministic, distinguishable fake addresses. internal/idt's own
// tests exercise the real contract (StubAddr called once per vector,
// syscall vector handled at DPL3); this only exists so internal/boot's
// wiring code type-checks and can be exercised end-to-end on `go test`.
type DefaultStubTable struct{}

func (DefaultStubTable) StubAddr(vector int) uintptr { return 0xD000_0000 + uintptr(vector) }
