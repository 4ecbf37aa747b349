package syscall

import (
	"github.com/kuzuos/kuzuos/internal/kerrors"
	"github.com/kuzuos/kuzuos/internal/trap"
)

// Machine is everything the syscall layer needs from the rest of the
// kernel, injected so Handler is unit-testable without real console/FS/
// heap hardware (the same seam internal/trap.Dispatcher uses for its
// trampolines, and the pattern biscuit's syscall.go uses by threading a
// *common.Kernel_t through every Sys_* method instead of touching
// package-level globals).
type Machine interface {
	Memory

	// ConsoleWrite emits data to fd (FDStdout or FDStderr only) and
	// returns the byte count written.
	ConsoleWrite(fd int, data []byte) int

	// PollKeyboard is one non-blocking read of the keyboard buffer
	// (§4.5's "poll the keyboard once, return 0 if empty").
	PollKeyboard() (b byte, ok bool)

	// FSExists, FSRead, FSUnlink, FSMkdir, FSRmdir delegate to
	// internal/fs; their error values are already EEXIST/ENOENT/EPERM
	// from that package's kerrors.Errno, which a Handler maps onto
	// -ENOENT/-EEXIST per §4.5's table.
	FSExists(path string) bool
	FSRead(path string) ([]byte, error)
	FSUnlink(path string) error
	FSMkdir(path string) error
	FSRmdir(path string) error

	// Brk maintains program_break: newBrk==0 reads the current value,
	// otherwise sets and returns it (§4.5).
	Brk(newBrk uint32) uint32

	// KMalloc/KFree back mmap(addr=0)/munmap (§4.5): KMalloc returns 0
	// on exhaustion, matching internal/heap.Alloc's null-on-failure
	// convention.
	KMalloc(size uint32) uint32
	KFree(addr uint32)

	// Exec hands control to the ELF runner. It returns an error only
	// when the image could not even be started (bad header, alloc
	// failure, missing file); on success it does not return at all in
	// the real kernel (it enters user mode), so Handler never writes a
	// syscall result after a successful call.
	Exec(path string, argv, envp []string) error
}

// Handler decodes and executes one int 0x80 trap per §4.4/§4.5. Its
// Handle method satisfies trap.SyscallHandler.
type Handler struct {
	Machine Machine
	FDs     *FDTable
	Runner  *trap.RunnerState
}

// Handle implements trap.SyscallHandler: it reads the syscall number and
// arguments out of the frame, dispatches per §4.5's table, and writes the
// result back into eax unless the call already transferred control
// elsewhere (execve on success, exit/exit_group).
func (h *Handler) Handle(f *trap.Frame) {
	num, a := f.SyscallArgs()
	switch Number(num) {
	case SysExit, SysExitGroup:
		h.Runner.RequestExit()
		f.SetSyscallResult(0)

	case SysRead:
		f.SetSyscallResult(h.sysRead(int(a[0]), a[1], a[2]))

	case SysWrite:
		f.SetSyscallResult(h.sysWrite(int(a[0]), a[1], a[2]))

	case SysOpen:
		f.SetSyscallResult(h.sysOpen(a[0], a[1]))

	case SysClose:
		f.SetSyscallResult(errnoResult(h.FDs.Close(int(a[0]))))

	case SysLseek:
		f.SetSyscallResult(h.sysLseek(int(a[0]), a[1], a[2]))

	case SysUnlink:
		f.SetSyscallResult(h.sysPathOp(a[0], h.Machine.FSUnlink))

	case SysMkdir:
		f.SetSyscallResult(h.sysPathOp(a[0], h.Machine.FSMkdir))

	case SysRmdir:
		f.SetSyscallResult(h.sysPathOp(a[0], h.Machine.FSRmdir))

	case SysGetpid:
		f.SetSyscallResult(1)

	case SysGetuid, SysGetgid:
		f.SetSyscallResult(0)

	case SysBrk:
		f.SetSyscallResult(int32(h.Machine.Brk(a[0])))

	case SysMmap, SysMmap2:
		f.SetSyscallResult(h.sysMmap(a[0], a[1]))

	case SysMunmap:
		h.Machine.KFree(a[0])
		f.SetSyscallResult(0)

	case SysExecve:
		h.sysExecve(f, a[0], a[1], a[2])

	case SysSchedYield:
		f.SetSyscallResult(0)

	default:
		f.SetSyscallResult(kerrors.ENOSYS.Ret())
	}
}

func errnoResult(err error) int32 {
	if err == nil {
		return 0
	}
	if e, ok := err.(kerrors.Errno); ok {
		return e.Ret()
	}
	return kerrors.EINVAL.Ret()
}

func (h *Handler) sysRead(fd int, bufAddr, count uint32) int32 {
	if fd == FDStdin {
		b, ok := h.Machine.PollKeyboard()
		if !ok {
			return 0
		}
		if err := WriteBytes(h.Machine, bufAddr, []byte{b}); err != nil {
			return kerrors.EFAULT.Ret()
		}
		return 1
	}

	e, err := h.FDs.lookup(fd)
	if err != nil {
		return errnoResult(err)
	}
	data, rerr := h.Machine.FSRead(e.path)
	if rerr != nil {
		return errnoResult(rerr)
	}
	if e.offset >= int64(len(data)) {
		return 0
	}
	remaining := data[e.offset:]
	if uint32(len(remaining)) > count {
		remaining = remaining[:count]
	}
	if err := WriteBytes(h.Machine, bufAddr, remaining); err != nil {
		return kerrors.EFAULT.Ret()
	}
	e.offset += int64(len(remaining))
	return int32(len(remaining))
}

func (h *Handler) sysWrite(fd int, bufAddr, count uint32) int32 {
	if fd != FDStdout && fd != FDStderr {
		return kerrors.ENOSYS.Ret()
	}
	data, err := ReadBytes(h.Machine, bufAddr, int(count))
	if err != nil {
		return kerrors.EFAULT.Ret()
	}
	return int32(h.Machine.ConsoleWrite(fd, data))
}

func (h *Handler) sysOpen(pathAddr, mode uint32) int32 {
	path, err := ReadCString(h.Machine, pathAddr, maxPathLen)
	if err != nil {
		return kerrors.EFAULT.Ret()
	}
	if !h.Machine.FSExists(path) {
		return kerrors.ENOENT.Ret()
	}
	fd, oerr := h.FDs.Open(path, mode)
	if oerr != nil {
		return errnoResult(oerr)
	}
	return int32(fd)
}

func (h *Handler) sysLseek(fd int, offset, whence uint32) int32 {
	off, err := h.FDs.Seek(fd, int64(int32(offset)), SeekWhence(whence))
	if err != nil {
		return errnoResult(err)
	}
	return int32(off)
}

// sysPathOp reads a path argument and runs it through op (FSUnlink/
// FSMkdir/FSRmdir), translating internal/fs's kerrors.Errno values
// straight through: EEXIST/ENOENT exactly match §4.5's table, and EPERM
// (e.g. rmdir on a non-empty directory) passes through unchanged since
// the table doesn't otherwise cover it.
func (h *Handler) sysPathOp(pathAddr uint32, op func(string) error) int32 {
	path, err := ReadCString(h.Machine, pathAddr, maxPathLen)
	if err != nil {
		return kerrors.EFAULT.Ret()
	}
	return errnoResult(op(path))
}

func (h *Handler) sysMmap(addr, length uint32) int32 {
	if addr == 0 {
		got := h.Machine.KMalloc(length)
		if got == 0 {
			return kerrors.ENOMEM.Ret()
		}
		return int32(got)
	}
	return int32(addr)
}

func (h *Handler) sysExecve(f *trap.Frame, pathAddr, argvAddr, envpAddr uint32) {
	path, err := ReadCString(h.Machine, pathAddr, maxPathLen)
	if err != nil {
		f.SetSyscallResult(kerrors.EFAULT.Ret())
		return
	}
	argv, err := ReadStringVector(h.Machine, argvAddr, maxArgvEntries, maxArgvEntryLen)
	if err != nil {
		f.SetSyscallResult(kerrors.EFAULT.Ret())
		return
	}
	envp, err := ReadStringVector(h.Machine, envpAddr, maxEnvpEntries, maxEnvpEntryLen)
	if err != nil {
		f.SetSyscallResult(kerrors.EFAULT.Ret())
		return
	}
	if execErr := h.Machine.Exec(path, argv, envp); execErr != nil {
		f.SetSyscallResult(kerrors.ENOENT.Ret())
		return
	}
	// Success: the runner has already entered the new image; there is
	// no result to write back into this frame.
}
