// Command kernel is KuzuOS's entry point: the image a Multiboot2-compliant
// loader (GRUB, QEMU's -kernel flag) hands control to. Everything before
// this package's main runs is the raw boot stub and linker script this
// repository does not carry as Go source (placing internal/boot.Header
// within the image's first 32KiB, switching onto a kernel stack, and
// stashing the loader's eax/ebx into the words internal/asm.
// MultibootMagic/MultibootInfo read back) — the same split the teacher
// draws between its own linker-level entry glue and the ordinary Go
// `func main` that follows it.
package main

import (
	"github.com/kuzuos/kuzuos/internal/asm"
	"github.com/kuzuos/kuzuos/internal/boot"
)

func main() {
	boot.KernelMain(asm.MultibootMagic(), asm.MultibootInfo())
}
