// Package kerrors defines the kernel's two error vocabularies: plain Go
// errors for anything that fails before a user program is live, and the
// negated-errno sentinels the syscall ABI requires once one is running.
package kerrors

import "fmt"

// Errno is a Linux i386 errno value in its positive form; syscall return
// values carry -int32(Errno).
type Errno int32

const (
	EPERM  Errno = 1
	ENOENT Errno = 2
	EBADF  Errno = 9
	ENOMEM Errno = 12
	EFAULT Errno = 14
	EEXIST Errno = 17
	EMFILE Errno = 24
	EINVAL Errno = 22
	ENOSYS Errno = 38
)

func (e Errno) Error() string {
	switch e {
	case EPERM:
		return "operation not permitted"
	case ENOENT:
		return "no such file or directory"
	case EBADF:
		return "bad file descriptor"
	case ENOMEM:
		return "out of memory"
	case EFAULT:
		return "bad address"
	case EEXIST:
		return "file exists"
	case EMFILE:
		return "too many open files"
	case EINVAL:
		return "invalid argument"
	case ENOSYS:
		return "function not implemented"
	default:
		return fmt.Sprintf("errno %d", int32(e))
	}
}

// Ret is the value a syscall handler places in eax for a failed call.
func (e Errno) Ret() int32 {
	return -int32(e)
}

// ErrAllocFailed is returned by the heap and by anything layered on it
// when the kernel heap is exhausted.
var ErrAllocFailed = fmt.Errorf("kuzuos: allocation failed")

// BadELF wraps a reason an ELF image was rejected before any memory for it
// was committed.
type BadELF struct {
	Reason string
}

func (e *BadELF) Error() string { return "bogus ELF header: " + e.Reason }

// NewBadELF constructs a BadELF with a formatted reason.
func NewBadELF(format string, args ...any) error {
	return &BadELF{Reason: fmt.Sprintf(format, args...)}
}
