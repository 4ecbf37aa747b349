// Package shell implements the prompt/read/dispatch loop of §4.7: a line
// editor over the polled keyboard driver, backed by a bounded history ring
// buffer, and a built-in command table. Grounded on
// original_source/src/shell.c's shell_readline/shell_run/shell_execute_command
// trio, reshaped into the teacher's dependency-injection idiom (console and
// keyboard are interfaces here, not direct hardware access) so the whole
// loop is unit-testable on a host.
package shell

const historyMax = 16

// LineEditor accumulates keystrokes into a command line, supporting
// backspace, delete-previous, and up/down history recall (§4.7), the same
// contract original_source's shell_readline implements against a raw
// PS/2-polling loop and command_buffer/history globals.
type LineEditor struct {
	buf     []byte
	cursor  int // index within buf where the next typed rune is inserted
	history [][]byte
	histPos int // -1 means "not browsing history" (including the blank line past the newest entry)
}

func NewLineEditor() *LineEditor {
	return &LineEditor{histPos: -1}
}

// Line returns the text typed so far.
func (e *LineEditor) Line() string { return string(e.buf) }

// Cursor returns the current cursor index into Line().
func (e *LineEditor) Cursor() int { return e.cursor }

// Feed processes one input byte from the keyboard driver (ASCII, or one of
// kbd.CodeUp/CodeDown/CodeDelete) and reports whether the line is complete
// (a '\n' was seen). Backspace and Delete both erase a character
// (original_source has a single erase_last_char_visual helper used for
// both visual effects); Delete additionally differs from backspace only in
// name here since there is no separate cursor-in-middle-of-line model.
func (e *LineEditor) Feed(b byte) (done bool) {
	switch b {
	case '\n', '\r':
		return true
	case '\b', 0x7F: // backspace, and kbd.CodeDelete
		e.backspace()
		return false
	case 0x80: // kbd.CodeUp
		e.historyUp()
		return false
	case 0x81: // kbd.CodeDown
		e.historyDown()
		return false
	default:
		if b < 0x20 || b > 0x7E {
			return false
		}
		e.buf = append(e.buf, b)
		e.cursor++
		return false
	}
}

func (e *LineEditor) backspace() {
	if e.cursor == 0 {
		return
	}
	e.buf = e.buf[:len(e.buf)-1]
	e.cursor--
}

// historyUp recalls the previous history entry, starting from the newest.
func (e *LineEditor) historyUp() {
	if len(e.history) == 0 {
		return
	}
	if e.histPos < 0 {
		e.histPos = len(e.history)
	}
	if e.histPos > 0 {
		e.histPos--
	}
	e.replaceLine(e.history[e.histPos])
}

// historyDown cycles toward the newest entry, then to a blank line.
func (e *LineEditor) historyDown() {
	if e.histPos < 0 {
		return
	}
	e.histPos++
	if e.histPos >= len(e.history) {
		e.histPos = -1
		e.replaceLine(nil)
		return
	}
	e.replaceLine(e.history[e.histPos])
}

func (e *LineEditor) replaceLine(line []byte) {
	e.buf = append([]byte(nil), line...)
	e.cursor = len(e.buf)
}

// Commit finalizes the current line: pushes it onto the history ring
// (bounded at historyMax, oldest evicted first, matching the original's
// fixed HISTORY_MAX) unless it is empty or a duplicate of the most recent
// entry, then resets the editor for the next line.
func (e *LineEditor) Commit() string {
	line := string(e.buf)
	if len(e.buf) > 0 {
		if len(e.history) == 0 || string(e.history[len(e.history)-1]) != line {
			e.history = append(e.history, append([]byte(nil), e.buf...))
			if len(e.history) > historyMax {
				e.history = e.history[len(e.history)-historyMax:]
			}
		}
	}
	e.buf = nil
	e.cursor = 0
	e.histPos = -1
	return line
}

// History returns the recorded command lines, oldest first, for the
// `save` built-in to persist to `/.history` (see Shell.cmdSave).
func (e *LineEditor) History() []string {
	out := make([]string, len(e.history))
	for i, h := range e.history {
		out[i] = string(h)
	}
	return out
}
