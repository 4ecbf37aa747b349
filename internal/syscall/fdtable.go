package syscall

import "github.com/kuzuos/kuzuos/internal/kerrors"

// MaxFDs bounds the process-wide file descriptor table (§3): indices 0-2
// are reserved for stdin/stdout/stderr, the remainder lazily assigned.
const MaxFDs = 32

const (
	FDStdin  = 0
	FDStdout = 1
	FDStderr = 2
)

// fdEntry mirrors §3's File descriptor table entry exactly: used, path,
// offset, mode. The path is copied into kernel-owned storage at open time
// (§9's redesign note — the source kept a raw user pointer here, which
// this port deliberately does not).
type fdEntry struct {
	used   bool
	path   string
	offset int64
	mode   uint32
}

// FDTable is the single process-wide descriptor table (§5: one user
// program runs at a time, so one table is enough).
type FDTable struct {
	entries [MaxFDs]fdEntry
}

// NewFDTable returns a table with 0/1/2 reserved and nothing else open.
func NewFDTable() *FDTable {
	t := &FDTable{}
	t.entries[FDStdin] = fdEntry{used: true}
	t.entries[FDStdout] = fdEntry{used: true}
	t.entries[FDStderr] = fdEntry{used: true}
	return t
}

// Open allocates the lowest free fd >= 3 for path, or -EMFILE if the table
// is full (§4.5).
func (t *FDTable) Open(path string, mode uint32) (int, error) {
	for i := 3; i < MaxFDs; i++ {
		if !t.entries[i].used {
			t.entries[i] = fdEntry{used: true, path: path, offset: 0, mode: mode}
			return i, nil
		}
	}
	return 0, kerrors.EMFILE
}

// Close marks fd unused. Closing fd 0-2 or an already-closed fd is a
// silent no-op; the spec only requires a well-defined table, not strict
// POSIX close semantics for the reserved slots.
func (t *FDTable) Close(fd int) error {
	if fd < 0 || fd >= MaxFDs {
		return kerrors.EBADF
	}
	if fd >= 3 {
		t.entries[fd] = fdEntry{}
	}
	return nil
}

// Lookup returns the live entry for fd, or an error if it is not open
// (§3's invariant: only used=true entries carry a valid path).
func (t *FDTable) lookup(fd int) (*fdEntry, error) {
	if fd < 0 || fd >= MaxFDs || !t.entries[fd].used {
		return nil, kerrors.EBADF
	}
	return &t.entries[fd], nil
}

// Seek implements SEEK_SET/SEEK_CUR (§4.5; SEEK_END is not implemented).
func (t *FDTable) Seek(fd int, offset int64, whence SeekWhence) (int64, error) {
	e, err := t.lookup(fd)
	if err != nil {
		return 0, err
	}
	switch whence {
	case SeekSet:
		e.offset = offset
	case SeekCur:
		e.offset += offset
	default:
		return 0, kerrors.ENOSYS
	}
	return e.offset, nil
}
