package boot

import "unsafe"

// flatMemory implements syscall.Memory directly over the linear address
// space: paging is an explicit Non-goal (§3), so there is no translation
// table to consult and no fault to detect short of reading/writing
// outside physical RAM, which this kernel has no MMU to catch either.
// ValidatePointer's >=0x1000 floor is the only real guard a caller gets.
type flatMemory struct{}

func (flatMemory) ReadByte(addr uint32) (b byte, ok bool) {
	return *(*byte)(unsafe.Pointer(uintptr(addr))), true
}

func (flatMemory) WriteByte(addr uint32, b byte) (ok bool) {
	*(*byte)(unsafe.Pointer(uintptr(addr))) = b
	return true
}

// DefaultBreak is program_break's initial value (§4.5 brk). original_source
// /src/syscall.c's SYS_BRK case starts its own `static uint32_t
// program_break` at 0x500000 (5MB), a value that happens to fall inside
// this port's heapStart/heapSize window (internal/heap backs every kmalloc
// from the same physical range). Brk never allocates through
// internal/heap — it is pure bookkeeping, per §4.5 — so handing out an
// address inside the kmalloc window as a user program's break would let
// the two grow into each other's memory with nothing to catch it (no MMU,
// per flatMemory's doc comment). DefaultBreak is therefore fixed well
// above heapStart+heapSize instead of at the original's literal value.
const DefaultBreak uint32 = 0x01000000

// execer is the narrow collaborator Machine.Exec needs from
// internal/elfload.Runner, kept as an interface so Machine can be
// constructed in tests against a fake that never touches real memory.
type execer interface {
	Exec(path string, argv, envp []string, resume uintptr) error
}

// Machine wires every subsystem package into the single syscall.Machine
// implementation the dispatcher's Handler calls through, the same
// dependency-injection role internal/trap.Dispatcher's Resumer/FaultLogger
// fields and internal/elfload.Runner's Heap/FileSource fields play one
// layer down.
type Machine struct {
	flatMemory

	Console consoleWriter
	Kbd     keyboardPoller
	FS      fileStore
	Heap    allocator
	Runner  execer

	brk uint32
}

// consoleWriter, keyboardPoller, fileStore and allocator are declared here,
// narrowed to exactly what Machine calls, rather than importing
// internal/console/internal/kbd/internal/fs/internal/heap's concrete types
// directly: it keeps this file's test double small and mirrors how
// internal/shell.FS/Runner/Rebooter/Banner are defined against the
// collaborator's behavior, not its package.
type consoleWriter interface {
	Write(p []byte) (int, error)
}

type keyboardPoller interface {
	Poll() (b byte, ok bool)
}

type fileStore interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
	Remove(path string) error
	Mkdir(path string) error
}

type allocator interface {
	Alloc(size uint32) uintptr
	Free(ptr uintptr)
}

func (m *Machine) ConsoleWrite(fd int, data []byte) int {
	n, _ := m.Console.Write(data)
	return n
}

func (m *Machine) PollKeyboard() (b byte, ok bool) { return m.Kbd.Poll() }

func (m *Machine) FSExists(path string) bool          { return m.FS.Exists(path) }
func (m *Machine) FSRead(path string) ([]byte, error) { return m.FS.Read(path) }
func (m *Machine) FSUnlink(path string) error         { return m.FS.Remove(path) }
func (m *Machine) FSMkdir(path string) error          { return m.FS.Mkdir(path) }
func (m *Machine) FSRmdir(path string) error          { return m.FS.Remove(path) }

// Brk maintains program_break (§4.5): newBrk==0 reads the current value
// without changing it, matching the convention sbrk(0) uses to query.
func (m *Machine) Brk(newBrk uint32) uint32 {
	if newBrk != 0 {
		m.brk = newBrk
	}
	return m.brk
}

func (m *Machine) KMalloc(size uint32) uint32 { return uint32(m.Heap.Alloc(size)) }
func (m *Machine) KFree(addr uint32)          { m.Heap.Free(uintptr(addr)) }

// Exec hands off to internal/elfload.Runner. resume is always 0: on real
// hardware the trampoline that eventually consumes it needs the address
// the kernel's idle loop should resume at, which would normally come from
// a linker-supplied label the way the teacher's own patched runtime
// supplies entry points; this port has no such label to hand it (see
// DESIGN.md), so it follows the same resume=0 convention
// internal/shell.cmdRun already uses for the `run` built-in.
func (m *Machine) Exec(path string, argv, envp []string) error {
	return m.Runner.Exec(path, argv, envp, 0)
}
