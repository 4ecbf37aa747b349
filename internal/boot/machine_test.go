package boot

import "testing"

// fakeAllocator stands in for internal/heap.Heap so this test never
// touches real memory, the same narrow-interface role fileStore/
// consoleWriter/keyboardPoller play for their own collaborators above.
type fakeAllocator struct{}

func (fakeAllocator) Alloc(size uint32) uintptr { return 0 }
func (fakeAllocator) Free(ptr uintptr)          {}

type fakeConsole struct{}

func (fakeConsole) Write(p []byte) (int, error) { return len(p), nil }

type fakeKeyboard struct{}

func (fakeKeyboard) Poll() (byte, bool) { return 0, false }

type fakeFS struct{}

func (fakeFS) Exists(path string) bool          { return false }
func (fakeFS) Read(path string) ([]byte, error) { return nil, nil }
func (fakeFS) Remove(path string) error         { return nil }
func (fakeFS) Mkdir(path string) error          { return nil }

// newTestMachine builds a Machine exactly the way KernelMain does, so this
// test exercises the real production construction path instead of a
// syscall-package fixture that merely asserts its own hardcoded value.
func newTestMachine() *Machine {
	return &Machine{
		Console: fakeConsole{},
		Kbd:     fakeKeyboard{},
		FS:      fakeFS{},
		Heap:    fakeAllocator{},
		brk:     DefaultBreak,
	}
}

func TestMachineBrkStartsAtDefaultBreak(t *testing.T) {
	m := newTestMachine()
	if got := m.Brk(0); got != DefaultBreak {
		t.Fatalf("initial Brk(0) = %#x, want DefaultBreak %#x", got, DefaultBreak)
	}
}

func TestMachineBrkSetsAndReadsBackNewValue(t *testing.T) {
	m := newTestMachine()
	const grown = DefaultBreak + 0x1000
	if got := m.Brk(grown); got != grown {
		t.Fatalf("Brk(%#x) = %#x, want %#x", grown, got, grown)
	}
	if got := m.Brk(0); got != grown {
		t.Fatalf("Brk(0) after growing = %#x, want %#x", got, grown)
	}
}

func TestMachineBrkDefaultLiesAboveTheKernelHeapWindow(t *testing.T) {
	heapEnd := uint32(heapStart) + heapSize
	if DefaultBreak < heapEnd {
		t.Fatalf("DefaultBreak %#x overlaps the kernel heap window ending at %#x", DefaultBreak, heapEnd)
	}
}
