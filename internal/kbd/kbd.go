// Package kbd is the kernel's polled PS/2 keyboard driver (§6 "Keyboard").
// There is no IRQ1 handler: the shell's read loop polls the i8042
// controller's status port directly, matching §5's "suspension points"
// list, which names keyboard polling loops as one of the only places
// control leaves the kernel. Scancode-set-1 translation is grounded on
// tinyrange-cc's ps2keyboard.go set1/set2 table, adapted to emit ASCII
// instead of re-encoding to set 2 since this driver has no controller to
// forward to.
package kbd

import "github.com/kuzuos/kuzuos/internal/asm"

const (
	dataPort   uint16 = 0x60
	statusPort uint16 = 0x64

	statusOutputFull = 1 << 0

	extendedPrefix = 0xE0
	releaseBit     = 0x80
)

// In-band codes the input stream uses for keys with no ASCII
// representation (§6): Up, Down, Delete.
const (
	CodeUp     byte = 0x80
	CodeDown   byte = 0x81
	CodeDelete byte = 0x7F
)

// set1 maps scancode-set-1 make codes to their unshifted US-QWERTY ASCII
// value. Keys with no ASCII mapping (function keys, modifiers, locks) are
// left at 0 and simply produce no output byte.
var set1 = [128]byte{
	0x01: 0x1B, // ESC
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x0C: '-', 0x0D: '=', 0x0E: '\b',
	0x0F: '\t',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1A: '[', 0x1B: ']', 0x1C: '\n',
	0x1E: 'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l', 0x27: ';',
	0x28: '\'', 0x29: '`',
	0x2B: '\\',
	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm', 0x33: ',', 0x34: '.', 0x35: '/',
	0x39: ' ',
}

// Keyboard tracks the extended-scancode prefix state across polls.
type Keyboard struct {
	extended bool

	// port override lets tests drive the driver without real I/O ports;
	// New sets it to asm.Inb, which talks to the real hardware.
	inb func(uint16) uint8
}

func New() *Keyboard {
	return &Keyboard{inb: asm.Inb}
}

// setPortForTest installs a fake Inb, used by kbd_test.go to feed scancodes
// without a real 8042 controller.
func (k *Keyboard) setPortForTest(inb func(uint16) uint8) { k.inb = inb }

// Poll checks the controller's status register and, if a byte is waiting,
// consumes and translates one scancode. ok is false when nothing is
// pending; the shell's read loop spins calling Poll until ok.
func (k *Keyboard) Poll() (b byte, ok bool) {
	if k.inb(statusPort)&statusOutputFull == 0 {
		return 0, false
	}
	code := k.inb(dataPort)

	if code == extendedPrefix {
		k.extended = true
		return 0, false
	}
	extended := k.extended
	k.extended = false

	if code&releaseBit != 0 {
		// Key-up: not reported to the input stream (§6 only documents the
		// in-band codes for make events).
		return 0, false
	}

	if extended {
		switch code {
		case 0x48: // extended "up arrow"
			return CodeUp, true
		case 0x50: // extended "down arrow"
			return CodeDown, true
		case 0x53: // extended "delete"
			return CodeDelete, true
		default:
			return 0, false
		}
	}

	if int(code) >= len(set1) {
		return 0, false
	}
	ascii := set1[code]
	if ascii == 0 {
		return 0, false
	}
	return ascii, true
}

// Reboot pulses the keyboard-controller reset line (§4.7, §6): writing 0xFE
// to the command port (0x64) asserts the CPU reset pin on real i8042
// hardware.
func Reboot() {
	asm.Outb(statusPort, 0xFE)
}
