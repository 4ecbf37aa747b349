package banner

import (
	"encoding/binary"
	"testing"
)

func buildBann(width, height, delay uint32, fill byte) []byte {
	buf := make([]byte, headerLen+int(width)*int(height)*4)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], width)
	binary.LittleEndian.PutUint32(buf[8:12], height)
	binary.LittleEndian.PutUint32(buf[12:16], delay)
	for i := headerLen; i < len(buf); i++ {
		buf[i] = fill
	}
	return buf
}

func TestParseFrameAcceptsValidHeader(t *testing.T) {
	data := buildBann(2, 2, 100, 0xAB)
	f, err := ParseFrame(data)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if f.Width != 2 || f.Height != 2 || f.DelayMs != 100 {
		t.Fatalf("decoded frame = %+v", f)
	}
	if len(f.Pixels) != 16 {
		t.Fatalf("pixels len = %d, want 16", len(f.Pixels))
	}
}

func TestParseFrameRejectsBadMagic(t *testing.T) {
	data := buildBann(1, 1, 1, 0)
	copy(data[0:4], "XXXX")
	if _, err := ParseFrame(data); err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestParseFrameRejectsOversizedDimensions(t *testing.T) {
	data := buildBann(641, 1, 1, 0)
	if _, err := ParseFrame(data); err == nil {
		t.Fatal("expected an error for width > 640")
	}
	data = buildBann(1, 481, 1, 0)
	if _, err := ParseFrame(data); err == nil {
		t.Fatal("expected an error for height > 480")
	}
}

func TestParseFrameRejectsTruncatedPixels(t *testing.T) {
	data := buildBann(4, 4, 1, 0xFF)
	data = data[:len(data)-4]
	if _, err := ParseFrame(data); err == nil {
		t.Fatal("expected an error for truncated pixel data")
	}
}

func TestParseFrameRejectsTooSmallForHeader(t *testing.T) {
	if _, err := ParseFrame([]byte{'B', 'A'}); err == nil {
		t.Fatal("expected an error for a file smaller than the header")
	}
}

type recordingRenderer struct {
	calls int
	lastW uint32
}

func (r *recordingRenderer) DrawBitmap(x, y int, width, height uint32, pixels []byte) {
	r.calls++
	r.lastW = width
}

func TestTickDoesNothingWhenInactive(t *testing.T) {
	f, _ := ParseFrame(buildBann(1, 1, 2, 0))
	a := New(0, 0, f)
	r := &recordingRenderer{}
	a.Tick(r)
	if r.calls != 0 {
		t.Fatal("Tick must not draw while inactive")
	}
}

func TestTickDrawsEveryCallWhileActive(t *testing.T) {
	f, _ := ParseFrame(buildBann(1, 1, 5, 0))
	a := New(0, 0, f)
	a.SetActive(true)
	r := &recordingRenderer{}
	a.Tick(r)
	if r.calls != 1 {
		t.Fatalf("calls = %d, want 1", r.calls)
	}
}

func TestTickAdvancesFrameAfterDelayTicks(t *testing.T) {
	f0, _ := ParseFrame(buildBann(1, 1, 2, 1))
	f1, _ := ParseFrame(buildBann(1, 1, 2, 2))
	a := New(0, 0, f0, f1)
	a.SetActive(true)
	r := &recordingRenderer{}

	a.Tick(r) // elapsed=1, still frame 0
	if a.current != 0 {
		t.Fatalf("current = %d after 1 tick, want 0", a.current)
	}
	a.Tick(r) // elapsed reaches delay, advances to frame 1 and draws it
	if a.current != 1 {
		t.Fatalf("current = %d after 2 ticks, want 1", a.current)
	}
}

func TestTickWrapsAroundToFirstFrame(t *testing.T) {
	f0, _ := ParseFrame(buildBann(1, 1, 1, 0))
	a := New(0, 0, f0)
	a.SetActive(true)
	r := &recordingRenderer{}
	a.Tick(r)
	a.Tick(r)
	a.Tick(r)
	if a.current != 0 {
		t.Fatalf("single-frame animation must stay at frame 0, got %d", a.current)
	}
}
