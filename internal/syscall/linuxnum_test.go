//go:build linux

package syscall

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/kuzuos/kuzuos/internal/kerrors"
)

// These numbers are supposed to be the real Linux i386 ABI (§4.5), not
// invented values, so cross-check every constant this package defines
// against golang.org/x/sys/unix the way tinyrange-cc's ir package
// cross-checks its own syscall constant tables (internal/ir/ir_test.go,
// retrieval pack) rather than trusting a hand-copied table blindly.
func TestSyscallNumbersMatchLinuxABI(t *testing.T) {
	cases := []struct {
		name string
		got  Number
		want int
	}{
		{"exit", SysExit, unix.SYS_EXIT},
		{"read", SysRead, unix.SYS_READ},
		{"write", SysWrite, unix.SYS_WRITE},
		{"open", SysOpen, unix.SYS_OPEN},
		{"close", SysClose, unix.SYS_CLOSE},
		{"unlink", SysUnlink, unix.SYS_UNLINK},
		{"execve", SysExecve, unix.SYS_EXECVE},
		{"lseek", SysLseek, unix.SYS_LSEEK},
		{"getpid", SysGetpid, unix.SYS_GETPID},
		{"getuid", SysGetuid, unix.SYS_GETUID},
		{"mkdir", SysMkdir, unix.SYS_MKDIR},
		{"rmdir", SysRmdir, unix.SYS_RMDIR},
		{"brk", SysBrk, unix.SYS_BRK},
		{"getgid", SysGetgid, unix.SYS_GETGID},
		{"sched_yield", SysSchedYield, unix.SYS_SCHED_YIELD},
		{"mmap", SysMmap, unix.SYS_MMAP},
		{"munmap", SysMunmap, unix.SYS_MUNMAP},
		{"exit_group", SysExitGroup, unix.SYS_EXIT_GROUP},
	}
	for _, c := range cases {
		if int(c.got) != c.want {
			t.Errorf("%s: got %d, want %d (unix.SYS_*)", c.name, c.got, c.want)
		}
	}
}

func TestErrnoValuesMatchLinuxABI(t *testing.T) {
	cases := []struct {
		name string
		got  kerrors.Errno
		want unix.Errno
	}{
		{"EPERM", kerrors.EPERM, unix.EPERM},
		{"ENOENT", kerrors.ENOENT, unix.ENOENT},
		{"EBADF", kerrors.EBADF, unix.EBADF},
		{"ENOMEM", kerrors.ENOMEM, unix.ENOMEM},
		{"EFAULT", kerrors.EFAULT, unix.EFAULT},
		{"EEXIST", kerrors.EEXIST, unix.EEXIST},
		{"EMFILE", kerrors.EMFILE, unix.EMFILE},
		{"EINVAL", kerrors.EINVAL, unix.EINVAL},
		{"ENOSYS", kerrors.ENOSYS, unix.ENOSYS},
	}
	for _, c := range cases {
		if int32(c.got) != int32(c.want) {
			t.Errorf("%s: got %d, want %d (unix.E*)", c.name, c.got, c.want)
		}
	}
}
