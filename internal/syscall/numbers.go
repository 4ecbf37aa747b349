// Package syscall decodes the Linux i386 int 0x80 ABI and dispatches to
// kernel services (§4.5). Argument/result plumbing goes through
// trap.Frame; everything else in the kernel that a syscall needs (console,
// filesystem, the running program's break, the runner's exec entry) is
// injected through the Machine interface in dispatch.go so this package is
// unit-testable without real hardware, matching how justanotherdot/biscuit
// threads a *common.Proc_t/common.Fd_t through its syscall handlers instead
// of reaching for globals (biscuit kernel/main.go, retrieval pack).
package syscall

// Number is a Linux i386 syscall number, kept as a distinct type (rather
// than a bare int) so a lookup table keyed on it can't be confused with an
// errno or a file descriptor.
type Number uint32

// Numbers implemented per §4.5's table. The exact values match the real
// Linux i386 ABI; linuxnum_test.go cross-checks them against
// golang.org/x/sys/unix on hosted builds.
const (
	SysExit          Number = 1
	SysRead          Number = 3
	SysWrite         Number = 4
	SysOpen          Number = 5
	SysClose         Number = 6
	SysUnlink        Number = 10
	SysExecve        Number = 11
	SysLseek         Number = 19
	SysGetpid        Number = 20
	SysGetuid        Number = 24
	SysMkdir         Number = 39
	SysRmdir         Number = 40
	SysBrk           Number = 45
	SysGetgid        Number = 47
	SysSchedYield    Number = 158
	SysMmap          Number = 90
	SysMunmap        Number = 91
	SysMmap2         Number = 192
	SysExitGroup     Number = 252
)

// SeekWhence mirrors the three lseek modes named in §4.5; only SeekSet and
// SeekCur are implemented, SeekEnd is explicitly not (spec.md's own
// omission, not a gap in this port).
type SeekWhence int32

const (
	SeekSet SeekWhence = 0
	SeekCur SeekWhence = 1
	SeekEnd SeekWhence = 2
)
