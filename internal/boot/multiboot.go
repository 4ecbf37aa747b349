// Package boot wires every subsystem package together into the single
// KernelMain control-flow table in §2, and owns the Multiboot2 header the
// loader scans for (§6). The teacher has no equivalent (mazboot/golang's
// AArch64 image is entered via a patched runtime and a linker-supplied
// vector table, not a scanned header), so this header's shape is grounded
// directly on §6's field list rather than a pack file; cmd/kernel is
// responsible for placing Header within the first 32 KiB of the
// final image (a linker-script concern outside what a single Go package
// can guarantee, noted in DESIGN.md).
package boot

import "encoding/binary"

const (
	multiboot2Magic        = 0xE85250D6
	multiboot2ArchI386      = 0
	multiboot2HeaderLength = 16
)

// Header is the 16-byte Multiboot2 header §6 requires: magic,
// architecture, length, and a checksum chosen so the four fields sum to
// zero mod 2^32 (the bootloader validates this before trusting the rest
// of the header).
var Header = buildHeader()

func buildHeader() [multiboot2HeaderLength]byte {
	var h [multiboot2HeaderLength]byte
	binary.LittleEndian.PutUint32(h[0:4], multiboot2Magic)
	binary.LittleEndian.PutUint32(h[4:8], multiboot2ArchI386)
	binary.LittleEndian.PutUint32(h[8:12], multiboot2HeaderLength)

	sum := uint32(0)
	for i := 0; i < 12; i += 4 {
		sum += binary.LittleEndian.Uint32(h[i : i+4])
	}
	binary.LittleEndian.PutUint32(h[12:16], -sum)
	return h
}

// Fixed physical windows this kernel's single, paging-free address space
// (§3 Non-goals) partitions by convention rather than by page table: the
// kernel stack top the GDT/TSS point esp0 at, and the heap window
// internal/heap.Init carves its free list from. The stack top (0x90000)
// sits below the 1MiB mark a Multiboot2-loaded kernel typically runs at;
// the heap window starts at 4MiB, chosen generously past this image's own
// code+data so the loader never overlaps it (cmd/kernel's linker script is the actual authority on
// where the kernel image ends; these constants assume it ends well below
// heapStart, noted in DESIGN.md as a linker-script concern this package
// cannot itself enforce).
const (
	kernelStackTop uintptr = 0x00090000
	heapStart      uintptr = 0x00400000
	heapSize       uint32  = 4 << 20
)
