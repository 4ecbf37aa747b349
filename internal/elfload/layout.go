package elfload

import (
	"unsafe"

	"github.com/kuzuos/kuzuos/internal/kerrors"
)

// Heap is the narrow view of internal/heap.Heap the loader needs.
// internal/heap.Heap satisfies this directly.
type Heap interface {
	Alloc(size uint32) uintptr
	Free(ptr uintptr)
}

// FileSource reads a whole file's bytes by path. internal/fs.FS
// satisfies this directly (its Read method has this exact signature).
type FileSource interface {
	Read(path string) ([]byte, error)
}

// Image is one loaded ELF image: either the main program or, when a
// PT_INTERP header is present, the interpreter loaded alongside it
// (§4.6 step 6).
type Image struct {
	Base    uintptr
	Size    uint32
	Entry   uintptr
	Ehdr    ehdr
	PhdrVA  uint32 // vaddr the program headers live at, post-relocation; 0 when no PT_LOAD segment maps them
	PhNum   int
	PhEnt   int
}

// rawBytesAt views length bytes of the kernel's own flat address space
// starting at addr as a Go byte slice. This is safe only because the
// kernel runs without paging (a Non-goal) and the heap's addresses are
// the same linear addresses the running Go program already lives in —
// the same assumption the teacher's loadAndRunKmazarin makes when it
// builds a raw slice header over a linker-symbol address
// (mazboot/golang/main/kernel.go, parseEmbeddedKmazarin).
func rawBytesAt(addr uintptr, length uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
}

// loadOne performs §4.6 steps 1-5 for a single file: parse, lay out a
// single zero-filled heap allocation sized to span every PT_LOAD
// segment, copy segment bytes in, zero the BSS tail, and compute the
// entry address relative to the allocation.
func loadOne(fsrc FileSource, heap Heap, path string) (Image, error) {
	data, err := fsrc.Read(path)
	if err != nil {
		return Image{}, kerrors.NewBadELF("reading %s: %v", path, err)
	}
	h, err := parseEhdr(data)
	if err != nil {
		return Image{}, err
	}
	phdrs, err := parsePhdrs(data, h)
	if err != nil {
		return Image{}, err
	}

	var minva, maxva uint32
	haveLoad := false
	for _, p := range phdrs {
		if p.ptype != ptLoad {
			continue
		}
		lo := truncPage(p.vaddr)
		hi := roundPage(p.vaddr + p.memsz)
		if !haveLoad {
			minva, maxva = lo, hi
			haveLoad = true
			continue
		}
		if lo < minva {
			minva = lo
		}
		if hi > maxva {
			maxva = hi
		}
	}
	if !haveLoad {
		return Image{}, kerrors.NewBadELF("%s has no PT_LOAD segments", path)
	}

	size := maxva - minva
	base := heap.Alloc(size)
	if base == 0 {
		return Image{}, kerrors.ErrAllocFailed
	}

	dst := rawBytesAt(base, size)
	for i := range dst {
		dst[i] = 0
	}

	for _, p := range phdrs {
		if p.ptype != ptLoad {
			continue
		}
		destOff := (truncPage(p.vaddr) - minva) + (p.vaddr & pageMask)
		if p.filesz > 0 {
			srcEnd := int(p.offset) + int(p.filesz)
			if int(p.offset) < 0 || srcEnd > len(data) || srcEnd < int(p.offset) {
				heap.Free(base)
				return Image{}, kerrors.NewBadELF("segment file range out of bounds")
			}
			if uint64(destOff)+uint64(p.filesz) > uint64(size) {
				heap.Free(base)
				return Image{}, kerrors.NewBadELF("segment overruns its own layout")
			}
			copy(dst[destOff:destOff+p.filesz], data[p.offset:srcEnd])
		}
		// memsz > filesz bytes were already zeroed above (§4.6 step 4).
	}

	var phdrVA uint32
	for _, p := range phdrs {
		if p.ptype == ptLoad && h.phoff >= p.offset && h.phoff-p.offset < p.filesz {
			phdrVA = uint32(base) + (p.vaddr - minva) + (h.phoff - p.offset)
			break
		}
	}

	return Image{
		Base:  base,
		Size:  size,
		Entry: base + uintptr(h.entry-minva),
		Ehdr:  h,
		PhdrVA: phdrVA,
		PhNum: int(h.phnum),
		PhEnt: int(h.phentsz),
	}, nil
}

// Load performs the full §4.6 sequence for one user-program invocation:
// load the main image, and, if it carries a PT_INTERP header, load the
// interpreter too. The returned mainImage and interpImage (nil if none)
// are both owned allocations the caller must Free on any later failure.
func Load(fsrc FileSource, heap Heap, path string) (main Image, interp *Image, err error) {
	main, err = loadOne(fsrc, heap, path)
	if err != nil {
		return Image{}, nil, err
	}

	data, rerr := fsrc.Read(path)
	if rerr != nil {
		heap.Free(main.Base)
		return Image{}, nil, kerrors.NewBadELF("re-reading %s: %v", path, rerr)
	}
	phdrs, perr := parsePhdrs(data, main.Ehdr)
	if perr != nil {
		heap.Free(main.Base)
		return Image{}, nil, perr
	}
	interpPath, has, ferr := findInterp(data, phdrs)
	if ferr != nil {
		heap.Free(main.Base)
		return Image{}, nil, ferr
	}
	if !has {
		return main, nil, nil
	}

	i, err := loadOne(fsrc, heap, interpPath)
	if err != nil {
		heap.Free(main.Base)
		return Image{}, nil, err
	}
	return main, &i, nil
}
