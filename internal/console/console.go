// Package console is the kernel's single text-output sink: a VGA text-mode
// buffer on real hardware, a software stub everywhere else. Every kernel
// diagnostic and every `write` syscall to fd 1/2 goes through it rather
// than fmt.Println, since fmt allocates and the dispatcher (§4.4) must
// stay callable before the heap exists.
package console

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const (
	Cols = 80
	Rows = 25
)

// cell packs a VGA text-mode character/attribute pair (grounded on the
// teacher's packed-pixel framebuffer cell in framebuffer_qemu.go, adapted
// from RGBA8888 pixels to the 2-byte char+attribute VGA text cell).
type cell struct {
	ch   byte
	attr byte
}

const defaultAttr = 0x07 // light grey on black

// Console owns the text-mode grid and cursor. It is safe to call from the
// interrupt dispatcher: Write never allocates once the buffer is sized.
type Console struct {
	mu     sync.Mutex
	buf    [Rows][Cols]cell
	col    int
	row    int
	attr   byte
	sink   func([Rows][Cols]cell) // test/host hook; nil on real hardware (VGA memory is the buf itself)
}

var global = New()

// Global returns the kernel's single console instance, the one every
// syscall and diagnostic helper writes through.
func Global() *Console { return global }

func New() *Console {
	c := &Console{attr: defaultAttr}
	c.clearLocked()
	return c
}

// SetSinkForTest installs a callback invoked after every Write with a
// snapshot of the grid, letting tests assert on rendered contents without
// touching real VGA memory.
func (c *Console) SetSinkForTest(sink func([Rows][Cols]cell)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

func (c *Console) clearLocked() {
	for r := 0; r < Rows; r++ {
		for col := 0; col < Cols; col++ {
			c.buf[r][col] = cell{ch: ' ', attr: c.attr}
		}
	}
	c.col, c.row = 0, 0
}

// Clear resets the grid and homes the cursor (the shell's `clear` built-in).
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.notifyLocked()
}

// Write implements io.Writer so fmt.Fprintf-free helpers (Printf below) and
// the write(2)-syscall path share one code path. It always returns
// len(p), nil: a full screen simply scrolls, it never blocks or fails.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range p {
		c.putLocked(b)
	}
	c.notifyLocked()
	return len(p), nil
}

func (c *Console) putLocked(b byte) {
	switch b {
	case '\n':
		c.newlineLocked()
		return
	case '\r':
		c.col = 0
		return
	case '\b':
		if c.col > 0 {
			c.col--
			c.buf[c.row][c.col] = cell{ch: ' ', attr: c.attr}
		}
		return
	}
	c.buf[c.row][c.col] = cell{ch: b, attr: c.attr}
	c.col++
	if c.col >= Cols {
		c.newlineLocked()
	}
}

func (c *Console) newlineLocked() {
	c.col = 0
	c.row++
	if c.row >= Rows {
		c.scrollLocked()
		c.row = Rows - 1
	}
}

func (c *Console) scrollLocked() {
	for r := 0; r < Rows-1; r++ {
		c.buf[r] = c.buf[r+1]
	}
	for col := 0; col < Cols; col++ {
		c.buf[Rows-1][col] = cell{ch: ' ', attr: c.attr}
	}
}

func (c *Console) notifyLocked() {
	if c.sink != nil {
		c.sink(c.buf)
	}
}

// Printf is the kernel-side log helper every non-allocating diagnostic path
// uses instead of fmt.Printf (§1 AMBIENT STACK: never fmt.Println from
// interrupt context). It is a thin hand-rolled formatter supporting just
// the verbs the kernel actually needs, the way the teacher's printHex32/
// uartPuts family avoids fmt entirely.
func (c *Console) Printf(format string, args ...any) {
	c.Write([]byte(sprintf(format, args...)))
}

// Line returns row r as a string (trailing spaces trimmed), used by tests
// and by the shell to redraw its own prompt line.
func (c *Console) Line(r int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	end := Cols
	for end > 0 && c.buf[r][end-1].ch == ' ' {
		end--
	}
	out := make([]byte, end)
	for i := 0; i < end; i++ {
		out[i] = c.buf[r][i].ch
	}
	return string(out)
}

// Cursor returns the current column and row.
func (c *Console) Cursor() (col, row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.col, c.row
}

// serialPort is QEMU's first 16550 UART, the standard `-serial stdio`
// target real hardware and every emulator agree on.
const serialPort uint16 = 0x3F8

// SerialFrame renders the VGA grid as a VT100/ANSI byte stream for a
// COM1 mirror, grounded on tinyrange-cc's internal/term (which parses
// this same escape vocabulary for its host-side terminal emulator; here
// the kernel generates it instead of consuming it). Home, erase, redraw
// every row, then reposition the real cursor, so a host watching over
// `-serial stdio` sees the identical screen VGA memory holds.
func (c *Console) SerialFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	b.WriteString(ansi.EraseEntireScreen)
	for r := 0; r < Rows; r++ {
		b.WriteString(ansi.CursorPosition(1, r+1))
		for col := 0; col < Cols; col++ {
			ch := c.buf[r][col].ch
			if ch == 0 {
				ch = ' '
			}
			b.WriteByte(ch)
		}
	}
	b.WriteString(ansi.CursorPosition(c.col+1, c.row+1))
	return []byte(b.String())
}

// WriteSerial drains a SerialFrame out through outb one byte at a time,
// the only I/O primitive internal/asm exposes for a UART with no FIFO
// driver of its own (§4 AMBIENT STACK names no serial console, so this
// stays a best-effort mirror: no line status register wait, no IRQ4).
func (c *Console) WriteSerial(outb func(port uint16, b uint8)) {
	for _, b := range c.SerialFrame() {
		outb(serialPort, b)
	}
}
