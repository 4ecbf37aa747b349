package boot

import "github.com/kuzuos/kuzuos/internal/kbd"

// kbdRebooter adapts kbd.Reboot (a package function, since pulsing the
// i8042 reset line needs no per-instance state) to internal/shell.Rebooter,
// which the shell dispatch table calls as a method so it can be faked in
// shell_test.go.
type kbdRebooter struct{}

func (kbdRebooter) Reboot() { kbd.Reboot() }
