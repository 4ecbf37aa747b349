//go:build 386

package asm

// Outb writes a byte to an I/O port (the OUT instruction).
func Outb(port uint16, val uint8)

// Inb reads a byte from an I/O port (the IN instruction).
func Inb(port uint16) uint8

// Cli disables maskable interrupts.
func Cli()

// Sti enables maskable interrupts.
func Sti()

// Hlt halts the CPU until the next interrupt.
func Hlt()

// LoadGDT loads the GDTR from a packed {limit uint16, base uint32} pointer.
func LoadGDT(gdtr uintptr)

// LoadIDT loads the IDTR from a packed {limit uint16, base uint32} pointer.
func LoadIDT(idtr uintptr)

// LoadTSS loads the task register with the given selector (LTR).
func LoadTSS(selector uint16)

// ReloadSegments reloads cs/ds/es/fs/gs/ss after a GDT change, far-jumping
// through codeSel to flush the prefetch queue.
func ReloadSegments(codeSel, dataSel uint16)

// ExitTrampoline restores the kernel esp/ebp saved before a user program
// was launched and resumes execution at resumeEip. Never returns.
func ExitTrampoline(esp, ebp, resumeEip uintptr)

// FaultTrampoline is identical to ExitTrampoline; it is a distinct symbol
// only so stack traces distinguish a clean exit from a fault recovery.
func FaultTrampoline(esp, ebp, resumeEip uintptr)

// EnterUser builds the final ring3 transition: it pushes the user ss:esp,
// eflags (with IF=1), cs:eip, loads the data-segment registers for ring3,
// and executes IRET. Never returns.
func EnterUser(userCS, userSS uint16, userEIP, userESP uintptr, userDS uint16)

// SaveKernelStack captures the caller's esp/ebp at the call site, for the
// loader's commit step (§4.6 step 8) to snapshot into saved_kernel_* right
// before EnterUser.
func SaveKernelStack() (esp, ebp uintptr)

// MultibootMagic and MultibootInfo return the eax/ebx values a Multiboot2
// loader hands the kernel at entry (§6: "Entry receives (mb_magic,
// mb_info_addr) in the first two arguments"), captured into fixed memory
// by this image's own _start stub before the Go runtime's usual
// entry path runs. That raw stub runs before any Go code, including this
// package's, can execute, so it is a linker/boot-script concern outside
// what any Go package can express (see DESIGN.md); boot_386.s only reads
// back what it already stashed.
func MultibootMagic() uint32
func MultibootInfo() uint32
