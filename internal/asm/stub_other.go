//go:build !386

package asm

// Software model of the port/privileged-instruction contract, used when
// the kernel's unit tests run on a hosted GOARCH (amd64, arm64, ...). There
// is no real port space or ring transition to drive here; this just gives
// the rest of the kernel something deterministic to link against so
// internal/gdt, internal/idt, internal/trap and internal/elfload can be
// exercised by `go test` without a 386 cross-build.
//
// Nothing here is NOSPLIT or written for correctness under interrupts —
// that discipline only matters for the real port_386.s/segment_386.s.

var (
	ports        [65536]uint8
	interrupts   bool
	gdtrLoaded   uintptr
	idtrLoaded   uintptr
	tssSelector  uint16
	halted       int
	trampolineFn func(esp, ebp, resumeEip uintptr)
)

func Outb(port uint16, val uint8) { ports[port] = val }
func Inb(port uint16) uint8       { return ports[port] }

func Cli() { interrupts = false }
func Sti() { interrupts = true }
func Hlt() { halted++ }

func LoadGDT(gdtr uintptr)       { gdtrLoaded = gdtr }
func LoadIDT(idtr uintptr)       { idtrLoaded = idtr }
func LoadTSS(selector uint16)    { tssSelector = selector }
func ReloadSegments(_, _ uint16) {}

// EnterUser has no hardware to enter on a hosted build; tests that exercise
// the runner commit path install a fake via SetEnterUserHookForTest instead of
// calling this.
func EnterUser(userCS, userSS uint16, userEIP, userESP uintptr, userDS uint16) {
	if enterUserHook != nil {
		enterUserHook(userCS, userSS, userEIP, userESP, userDS)
		return
	}
}

func ExitTrampoline(esp, ebp, resumeEip uintptr) {
	if trampolineFn != nil {
		trampolineFn(esp, ebp, resumeEip)
	}
}

func FaultTrampoline(esp, ebp, resumeEip uintptr) {
	if trampolineFn != nil {
		trampolineFn(esp, ebp, resumeEip)
	}
}

// SaveKernelStack has no real stack to capture on a hosted build; it
// returns fixed sentinel values so RunnerState.Commit still has
// something non-zero to snapshot in tests.
func SaveKernelStack() (esp, ebp uintptr) {
	return 0xEE000000, 0xEE000100
}

// MultibootMagic and MultibootInfo have no real bootloader handoff to read
// on a hosted build; MultibootMagic returns the real Multiboot2 success
// magic (§6) so boot package tests can assert KernelMain was handed a
// plausible value without needing real hardware.
func MultibootMagic() uint32 { return 0x36D76289 }
func MultibootInfo() uint32  { return 0 }

var enterUserHook func(userCS, userSS uint16, userEIP, userESP uintptr, userDS uint16)

// SetEnterUserHookForTest lets package trap/elfload tests observe (or
// simulate a fault from) the ring3 transition without real hardware.
func SetEnterUserHookForTest(fn func(userCS, userSS uint16, userEIP, userESP uintptr, userDS uint16)) {
	enterUserHook = fn
}

// SetTrampolineHookForTest lets tests observe the kernel-stack restore
// performed by Exit/FaultTrampoline.
func SetTrampolineHookForTest(fn func(esp, ebp, resumeEip uintptr)) {
	trampolineFn = fn
}

// TestPortSpace exposes the simulated port array for test assertions
// against PIC/PIT programming sequences.
func TestPortSpace() *[65536]uint8 { return &ports }

// TestInterruptsEnabled reports the simulated IF flag.
func TestInterruptsEnabled() bool { return interrupts }

// TestHaltCount reports how many times Hlt was called.
func TestHaltCount() int { return halted }
