package syscall

import "github.com/kuzuos/kuzuos/internal/kerrors"

// Bounds from §4.5: every syscall argument that is a user pointer must lie
// in [0x1000, 0xFFFFFFFF], and the strings/arrays dereferenced through it
// are length-bounded.
const (
	minUserAddr       = 0x1000
	maxPathLen        = 256
	maxArgvEntryLen   = 256
	maxEnvpEntryLen   = 512
	maxArgvEntries    = 64
	maxEnvpEntries    = 64
)

// Memory is the narrow view of the flat address space a syscall handler
// needs: this kernel has no paging (a Non-goal), so "user" and "kernel"
// addresses share one linear space and the only thing separating them is
// the range check below, not a translation table.
type Memory interface {
	// ReadByte and WriteByte fault (return false) outside the memory the
	// implementation actually backs; ValidatePointer is a cheaper
	// first-line check callers do before ever calling these.
	ReadByte(addr uint32) (b byte, ok bool)
	WriteByte(addr uint32, b byte) (ok bool)
}

// ValidatePointer rejects a raw user pointer before it is ever
// dereferenced (§4.5, §8's pointer-validation invariant): anything below
// 0x1000 is -EFAULT, full stop.
func ValidatePointer(addr uint32) error {
	if addr < minUserAddr {
		return kerrors.EFAULT
	}
	return nil
}

// ReadCString copies a NUL-terminated string out of user memory, bounded
// by maxLen, validating every byte's address as it goes. It never reads
// past a validated pointer's failure.
func ReadCString(mem Memory, addr uint32, maxLen int) (string, error) {
	if err := ValidatePointer(addr); err != nil {
		return "", err
	}
	buf := make([]byte, 0, 64)
	for i := 0; i < maxLen; i++ {
		a := addr + uint32(i)
		if err := ValidatePointer(a); err != nil {
			return "", err
		}
		b, ok := mem.ReadByte(a)
		if !ok {
			return "", kerrors.EFAULT
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return "", kerrors.EFAULT
}

// ReadBytes copies n bytes out of user memory starting at addr, validating
// the whole range before returning any data.
func ReadBytes(mem Memory, addr uint32, n int) ([]byte, error) {
	if err := ValidatePointer(addr); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		a := addr + uint32(i)
		if err := ValidatePointer(a); err != nil {
			return nil, err
		}
		b, ok := mem.ReadByte(a)
		if !ok {
			return nil, kerrors.EFAULT
		}
		out[i] = b
	}
	return out, nil
}

// WriteBytes copies data into user memory starting at addr, validating each
// address as it writes; a failure part-way leaves the bytes before it written.
func WriteBytes(mem Memory, addr uint32, data []byte) error {
	if err := ValidatePointer(addr); err != nil {
		return err
	}
	for i, b := range data {
		a := addr + uint32(i)
		if err := ValidatePointer(a); err != nil {
			return err
		}
		if ok := mem.WriteByte(a, b); !ok {
			return kerrors.EFAULT
		}
	}
	return nil
}

// ReadStringVector reads a NULL-terminated array of string pointers (an
// argv or envp), bounding both the vector length and each string's length
// per §4.5.
func ReadStringVector(mem Memory, addr uint32, maxEntries, maxEntryLen int) ([]string, error) {
	var out []string
	for i := 0; i < maxEntries; i++ {
		ptrAddr := addr + uint32(i*4)
		raw, err := ReadBytes(mem, ptrAddr, 4)
		if err != nil {
			return nil, err
		}
		entryAddr := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
		if entryAddr == 0 {
			return out, nil
		}
		s, err := ReadCString(mem, entryAddr, maxEntryLen)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return nil, kerrors.EFAULT // ran past maxEntries without a NULL terminator
}
