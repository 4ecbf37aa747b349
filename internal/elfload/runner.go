package elfload

import (
	"github.com/kuzuos/kuzuos/internal/asm"
	"github.com/kuzuos/kuzuos/internal/gdt"
	"github.com/kuzuos/kuzuos/internal/trap"
)

// Runner owns the collaborators needed to take a path on the FS all the
// way to a running ring3 program and back (§4.6 steps 1-9): the heap to
// load images into, the FS to read them from, and the one RunnerState
// shared with internal/trap.Dispatcher that tracks whether a program is
// live. StackBase/StackSize default to the kernel's fixed user-stack
// window (UserStackTop-userStackSize, userStackSize) when left zero;
// boot wiring leaves them at the default, tests inject a Go-backed arena
// instead so the stack build is exercised without a real linear address
// space.
type Runner struct {
	Heap      Heap
	FS        FileSource
	State     *trap.RunnerState
	StackBase uintptr
	StackSize uint32
}

func (r *Runner) stackWindow() (uintptr, uint32) {
	if r.StackSize != 0 {
		return r.StackBase, r.StackSize
	}
	return UserStackTop - uintptr(userStackSize), userStackSize
}

// Exec implements §4.6 steps 1-8: load the program (and its interpreter,
// if any), build the initial user stack, snapshot the kernel's own
// esp/ebp into the RunnerState, and transfer control to ring3. resume is
// the address execution returns to via the exit/fault trampolines (§4.4,
// §9) — on real hardware this function never returns; the call only
// returns here on a pre-commit failure, or on the hosted (!386) build
// where EnterUser is a test hook rather than a real IRET.
func (r *Runner) Exec(path string, argv, envp []string, resume uintptr) error {
	main, interp, err := Load(r.FS, r.Heap, path)
	if err != nil {
		return err
	}

	entry := main.Entry
	if interp != nil {
		entry = interp.Entry
	}

	base, size := r.stackWindow()
	esp, err := BuildInitialStack(base, size, argv, envp, path, main, interp)
	if err != nil {
		r.Heap.Free(main.Base)
		if interp != nil {
			r.Heap.Free(interp.Base)
		}
		return err
	}

	kesp, kebp := asm.SaveKernelStack()
	r.State.Commit(kesp, kebp, resume)

	asm.EnterUser(gdt.SelUserCode, gdt.SelUserData, entry, esp, gdt.SelUserData)
	return nil
}

// RunDefault is the shell's `run <path>` entry point (§4.7): it invokes
// Exec with the synthetic argv §4.6 step 7 specifies for a direct shell
// launch (argv[0]="loader", argv[1]=path) and no environment.
func (r *Runner) RunDefault(path string, resume uintptr) error {
	return r.Exec(path, []string{"loader", path}, nil, resume)
}
