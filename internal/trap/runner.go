package trap

// RunnerState is the process-wide "a user program is live" state, §9's
// redesign of the source's loose module-level globals
// (saved_kernel_esp, program_exit_requested, ...) into one object the
// dispatcher and the runner both hold by reference. Only one user program
// ever runs at a time (§5), so one RunnerState is enough for the whole
// kernel.
type RunnerState struct {
	savedESP, savedEBP         uintptr
	savedESPForExit, savedEBPForExit uintptr
	exitLabel                 uintptr
	exitRequested             bool
}

// Live reports whether a user program is currently running: §3's
// invariant is savedESP != 0 && exitLabel != 0, checked together so a
// half-committed state is never mistaken for "live".
func (r *RunnerState) Live() bool {
	return r.savedESP != 0 && r.exitLabel != 0
}

// Commit snapshots the kernel stack and resumption point immediately
// before handing control to a program's entry point (§4.6 step 8).
func (r *RunnerState) Commit(esp, ebp, exitLabel uintptr) {
	r.savedESP = esp
	r.savedEBP = ebp
	r.exitLabel = exitLabel
	r.exitRequested = false
}

// RequestExit is called by the syscall layer's exit/exit_group handlers
// (§4.5): it only raises the flag the dispatcher checks after a syscall
// returns. It does not itself touch the interrupt frame.
func (r *RunnerState) RequestExit() {
	r.exitRequested = true
}

// ExitRequested reports whether RequestExit has been called since the
// last Commit.
func (r *RunnerState) ExitRequested() bool {
	return r.exitRequested
}

// PrepareResume copies the live snapshot into the *_for_exit slots and
// clears the live snapshot, per §4.4 paths 1 and 2. It returns the values
// the caller hands to the exit/fault trampoline. Runner symmetry (§8)
// depends on every caller of PrepareResume clearing the live state before
// the shell can observe control again.
func (r *RunnerState) PrepareResume() (esp, ebp, label uintptr) {
	esp, ebp, label = r.savedESP, r.savedEBP, r.exitLabel
	r.savedESPForExit = esp
	r.savedEBPForExit = ebp
	r.savedESP = 0
	r.savedEBP = 0
	r.exitLabel = 0
	r.exitRequested = false
	return esp, ebp, label
}

// ForExit returns the snapshot the trampolines consume once they run on
// their own (post-rewrite) code path, separate from the live fields so a
// reentrant run (§8 scenario 6) never observes a half-cleared state.
func (r *RunnerState) ForExit() (esp, ebp uintptr) {
	return r.savedESPForExit, r.savedEBPForExit
}
