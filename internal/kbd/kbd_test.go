package kbd

import "testing"

// fakePorts simulates the i8042 status/data registers as a queue of
// scancode bytes; Inb(statusPort) reports "full" while any byte is
// queued, and each Inb(dataPort) call pops one byte.
type fakePorts struct {
	queue []byte
}

func (p *fakePorts) push(scancodes ...byte) { p.queue = append(p.queue, scancodes...) }

func (p *fakePorts) inb(port uint16) uint8 {
	switch port {
	case statusPort:
		if len(p.queue) > 0 {
			return statusOutputFull
		}
		return 0
	case dataPort:
		if len(p.queue) == 0 {
			return 0
		}
		b := p.queue[0]
		p.queue = p.queue[1:]
		return b
	}
	return 0
}

func newTestKeyboard(p *fakePorts) *Keyboard {
	k := New()
	k.setPortForTest(p.inb)
	return k
}

func TestPollTranslatesLetterMakeCode(t *testing.T) {
	p := &fakePorts{}
	p.push(0x1E) // 'a' make code
	k := newTestKeyboard(p)
	b, ok := k.Poll()
	if !ok || b != 'a' {
		t.Fatalf("Poll() = (%q, %v), want ('a', true)", b, ok)
	}
}

func TestPollIgnoresKeyRelease(t *testing.T) {
	p := &fakePorts{}
	p.push(0x1E | releaseBit)
	k := newTestKeyboard(p)
	if _, ok := k.Poll(); ok {
		t.Fatal("Poll() should not report a key-release byte")
	}
}

func TestPollReturnsFalseWhenNothingPending(t *testing.T) {
	p := &fakePorts{}
	k := newTestKeyboard(p)
	if _, ok := k.Poll(); ok {
		t.Fatal("Poll() should report ok=false with an empty queue")
	}
}

func TestExtendedPrefixMapsArrowsAndDelete(t *testing.T) {
	cases := []struct {
		code byte
		want byte
	}{
		{0x48, CodeUp},
		{0x50, CodeDown},
		{0x53, CodeDelete},
	}
	for _, c := range cases {
		p := &fakePorts{}
		p.push(extendedPrefix, c.code)
		k := newTestKeyboard(p)
		if _, ok := k.Poll(); ok {
			t.Fatal("the 0xE0 prefix byte alone must not produce output")
		}
		b, ok := k.Poll()
		if !ok || b != c.want {
			t.Fatalf("extended code %#x -> (%q, %v), want (%q, true)", c.code, b, ok, c.want)
		}
	}
}

func TestExtendedPrefixDoesNotLeakAcrossUnrelatedKeys(t *testing.T) {
	p := &fakePorts{}
	p.push(extendedPrefix, 0x48, 0x1E) // Up, then a plain 'a' with no prefix
	k := newTestKeyboard(p)
	k.Poll() // consumes the 0xE0 prefix, ok=false
	b, ok := k.Poll()
	if !ok || b != CodeUp {
		t.Fatalf("first real code = (%q, %v), want (Up, true)", b, ok)
	}
	b, ok = k.Poll()
	if !ok || b != 'a' {
		t.Fatalf("second code = (%q, %v), want ('a', true); extended flag must not persist", b, ok)
	}
}

func TestBackspaceAndEnterAndTabMapCorrectly(t *testing.T) {
	p := &fakePorts{}
	p.push(0x0E, 0x1C, 0x0F)
	k := newTestKeyboard(p)
	for _, want := range []byte{'\b', '\n', '\t'} {
		b, ok := k.Poll()
		if !ok || b != want {
			t.Fatalf("Poll() = (%q, %v), want (%q, true)", b, ok, want)
		}
	}
}
