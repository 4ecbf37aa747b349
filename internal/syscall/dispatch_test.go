package syscall

import (
	"testing"

	"github.com/kuzuos/kuzuos/internal/kerrors"
	"github.com/kuzuos/kuzuos/internal/trap"
)

// fakeMachine is a flat byte slice standing in for the kernel's whole
// linear address space, plus a minimal console/FS/heap model. It exists
// purely to drive Handler from tests without any real hardware, the same
// role internal/trap's function-valued Dispatcher fields play.
type fakeMachine struct {
	mem       [1 << 16]byte
	console   []byte
	kbdQueue  []byte
	files     map[string][]byte
	brk       uint32
	nextAlloc uint32
	execPath  string
	execErr   error
}

// fakeBrkFixture is an arbitrary nonzero starting value for fakeMachine's
// brk field: it exists only to exercise Handler's get/set logic against
// some fixed value, not to assert what the kernel's real default break is.
// internal/boot.TestMachineBrkStartsAtDefaultBreak covers that against the
// actual production Machine and its DefaultBreak constant.
const fakeBrkFixture = 0x06000000

func newFakeMachine() *fakeMachine {
	return &fakeMachine{files: make(map[string][]byte), brk: fakeBrkFixture, nextAlloc: 0x20000}
}

func (m *fakeMachine) ReadByte(addr uint32) (byte, bool) {
	if int(addr) >= len(m.mem) {
		return 0, false
	}
	return m.mem[addr], true
}

func (m *fakeMachine) WriteByte(addr uint32, b byte) bool {
	if int(addr) >= len(m.mem) {
		return false
	}
	m.mem[addr] = b
	return true
}

func (m *fakeMachine) ConsoleWrite(fd int, data []byte) int {
	m.console = append(m.console, data...)
	return len(data)
}

func (m *fakeMachine) PollKeyboard() (byte, bool) {
	if len(m.kbdQueue) == 0 {
		return 0, false
	}
	b := m.kbdQueue[0]
	m.kbdQueue = m.kbdQueue[1:]
	return b, true
}

func (m *fakeMachine) FSExists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *fakeMachine) FSRead(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, kerrors.ENOENT
	}
	return data, nil
}

func (m *fakeMachine) FSUnlink(path string) error {
	if _, ok := m.files[path]; !ok {
		return kerrors.ENOENT
	}
	delete(m.files, path)
	return nil
}

func (m *fakeMachine) FSMkdir(path string) error {
	if _, ok := m.files[path]; ok {
		return kerrors.EEXIST
	}
	m.files[path] = nil
	return nil
}

func (m *fakeMachine) FSRmdir(path string) error {
	return m.FSUnlink(path)
}

func (m *fakeMachine) Brk(newBrk uint32) uint32 {
	if newBrk != 0 {
		m.brk = newBrk
	}
	return m.brk
}

func (m *fakeMachine) KMalloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	addr := m.nextAlloc
	m.nextAlloc += size
	return addr
}

func (m *fakeMachine) KFree(addr uint32) {}

func (m *fakeMachine) Exec(path string, argv, envp []string) error {
	m.execPath = path
	return m.execErr
}

func writeCString(m *fakeMachine, addr uint32, s string) {
	copy(m.mem[addr:], s)
	m.mem[addr+uint32(len(s))] = 0
}

func newHandler(m *fakeMachine) *Handler {
	return &Handler{Machine: m, FDs: NewFDTable(), Runner: &trap.RunnerState{}}
}

func frameFor(num Number, ebx, ecx, edx uint32) *trap.Frame {
	f := &trap.Frame{}
	f.EAX = uint32(num)
	f.EBX = ebx
	f.ECX = ecx
	f.EDX = edx
	return f
}

func TestExitSetsRunnerExitRequested(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	r := &trap.RunnerState{}
	r.Commit(1, 1, 1)
	h.Runner = r
	f := frameFor(SysExit, 0, 0, 0)
	h.Handle(f)
	if !r.ExitRequested() {
		t.Fatal("exit syscall must request runner exit")
	}
	if f.EAX != 0 {
		t.Fatalf("exit must return 0, got %d", f.EAX)
	}
}

func TestWriteToStdoutReachesConsole(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	writeCString(m, 0x2000, "hello")
	f := frameFor(SysWrite, FDStdout, 0x2000, 5)
	h.Handle(f)
	if string(m.console) != "hello" {
		t.Fatalf("console got %q", m.console)
	}
	if int32(f.EAX) != 5 {
		t.Fatalf("write must return byte count, got %d", int32(f.EAX))
	}
}

func TestWriteToFileFdIsNotImplemented(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	f := frameFor(SysWrite, 7, 0x2000, 5)
	h.Handle(f)
	if int32(f.EAX) != kerrors.ENOSYS.Ret() {
		t.Fatalf("want -ENOSYS, got %d", int32(f.EAX))
	}
}

func TestReadFromStdinPollsKeyboardOnce(t *testing.T) {
	m := newFakeMachine()
	m.kbdQueue = []byte{'x'}
	h := newHandler(m)
	f := frameFor(SysRead, FDStdin, 0x3000, 1)
	h.Handle(f)
	if int32(f.EAX) != 1 {
		t.Fatalf("want 1 byte read, got %d", int32(f.EAX))
	}
	if m.mem[0x3000] != 'x' {
		t.Fatalf("byte not copied into user buffer")
	}

	// Empty queue: must return 0, not block.
	f2 := frameFor(SysRead, FDStdin, 0x3000, 1)
	h.Handle(f2)
	if int32(f2.EAX) != 0 {
		t.Fatalf("want 0 on empty keyboard queue, got %d", int32(f2.EAX))
	}
}

func TestOpenMissingFileReturnsENOENT(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	writeCString(m, 0x4000, "/nope")
	f := frameFor(SysOpen, 0x4000, 0, 0)
	h.Handle(f)
	if int32(f.EAX) != kerrors.ENOENT.Ret() {
		t.Fatalf("want -ENOENT, got %d", int32(f.EAX))
	}
}

func TestOpenReadCloseFlow(t *testing.T) {
	m := newFakeMachine()
	m.files["/a"] = []byte("0123456789")
	h := newHandler(m)
	writeCString(m, 0x4000, "/a")

	openF := frameFor(SysOpen, 0x4000, 0, 0)
	h.Handle(openF)
	fd := int32(openF.EAX)
	if fd < 3 {
		t.Fatalf("expected fd >= 3, got %d", fd)
	}

	readF := frameFor(SysRead, uint32(fd), 0x5000, 4)
	h.Handle(readF)
	if int32(readF.EAX) != 4 {
		t.Fatalf("want 4 bytes read, got %d", int32(readF.EAX))
	}
	if string(m.mem[0x5000:0x5004]) != "0123" {
		t.Fatalf("got %q", m.mem[0x5000:0x5004])
	}

	closeF := frameFor(SysClose, uint32(fd), 0, 0)
	h.Handle(closeF)
	if int32(closeF.EAX) != 0 {
		t.Fatalf("close should succeed, got %d", int32(closeF.EAX))
	}

	readAfterClose := frameFor(SysRead, uint32(fd), 0x5000, 4)
	h.Handle(readAfterClose)
	if int32(readAfterClose.EAX) != kerrors.EBADF.Ret() {
		t.Fatalf("read after close: want -EBADF, got %d", int32(readAfterClose.EAX))
	}
}

// TestBrkReadsAndSets checks Handler's SysBrk get/set logic (arg==0 reads
// without changing, nonzero arg sets and returns the new value) against
// fakeMachine's arbitrary fixture; it makes no claim about the kernel's
// real default break address.
func TestBrkReadsAndSets(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	f := frameFor(SysBrk, 0, 0, 0)
	h.Handle(f)
	if f.EAX != fakeBrkFixture {
		t.Fatalf("brk(0) should read back the fixture unchanged: got %#x, want %#x", f.EAX, uint32(fakeBrkFixture))
	}
	f2 := frameFor(SysBrk, fakeBrkFixture+0x100000, 0, 0)
	h.Handle(f2)
	if f2.EAX != fakeBrkFixture+0x100000 {
		t.Fatalf("set brk: got %#x, want %#x", f2.EAX, uint32(fakeBrkFixture+0x100000))
	}
}

func TestMmapZeroAddrAllocates(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	f := frameFor(SysMmap, 0, 4096, 0)
	h.Handle(f)
	if f.EAX == 0 {
		t.Fatal("mmap(addr=0) should allocate a nonzero address")
	}
}

func TestMmapNonzeroAddrPassesThrough(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	f := frameFor(SysMmap, 0xABCD000, 4096, 0)
	h.Handle(f)
	if f.EAX != 0xABCD000 {
		t.Fatalf("want addr echoed back, got %#x", f.EAX)
	}
}

func TestUnknownSyscallReturnsENOSYS(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	f := frameFor(Number(9999), 0, 0, 0)
	h.Handle(f)
	if int32(f.EAX) != kerrors.ENOSYS.Ret() {
		t.Fatalf("want -ENOSYS for unknown syscall, got %d", int32(f.EAX))
	}
}

func TestExecveSuccessDoesNotTouchEAX(t *testing.T) {
	m := newFakeMachine()
	h := newHandler(m)
	writeCString(m, 0x6000, "/bin/prog")
	m.mem[0x7000] = 0 // argv: immediate NULL terminator
	m.mem[0x7100] = 0 // envp: immediate NULL terminator
	f := frameFor(SysExecve, 0x6000, 0x7000, 0x7100)
	h.Handle(f)
	if m.execPath != "/bin/prog" {
		t.Fatalf("exec not invoked with expected path, got %q", m.execPath)
	}
	// eax still holds the syscall number: Handle never calls
	// SetSyscallResult on a successful execve, since control has already
	// transferred to the new image by the time a real kernel gets here.
	if f.EAX != uint32(SysExecve) {
		t.Fatalf("eax must be left alone on successful execve, got %#x", f.EAX)
	}
}

func TestExecveFailureReturnsENOENT(t *testing.T) {
	m := newFakeMachine()
	m.execErr = kerrors.ENOENT
	h := newHandler(m)
	writeCString(m, 0x6000, "/bin/missing")
	m.mem[0x7000] = 0
	m.mem[0x7100] = 0
	f := frameFor(SysExecve, 0x6000, 0x7000, 0x7100)
	h.Handle(f)
	if int32(f.EAX) != kerrors.ENOENT.Ret() {
		t.Fatalf("want -ENOENT on failed execve, got %d", int32(f.EAX))
	}
}
