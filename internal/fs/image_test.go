package fs

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildImage mirrors cmd/fsimage's record format directly, since that
// command lives outside this module's test boundary.
func buildImage(t *testing.T, dirs []string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(imageMagic)
	for _, d := range dirs {
		buf.WriteByte(imageKindDir)
		binary.Write(&buf, binary.LittleEndian, uint16(len(d)))
		buf.WriteString(d)
		binary.Write(&buf, binary.LittleEndian, uint32(0))
	}
	for path, body := range files {
		buf.WriteByte(imageKindFile)
		binary.Write(&buf, binary.LittleEndian, uint16(len(path)))
		buf.WriteString(path)
		binary.Write(&buf, binary.LittleEndian, uint32(len(body)))
		buf.WriteString(body)
	}
	return buf.Bytes()
}

func TestLoadImagePopulatesDirectoriesAndFiles(t *testing.T) {
	f := New()
	img := buildImage(t, []string{"/bin"}, map[string]string{"/bin/hello": "world"})
	if err := f.LoadImage(img); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if !f.IsDir("/bin") {
		t.Fatal("expected /bin to exist as a directory")
	}
	data, err := f.Read("/bin/hello")
	if err != nil || string(data) != "world" {
		t.Fatalf("Read(/bin/hello) = %q, %v", data, err)
	}
}

func TestLoadImageToleratesRootAlreadyPresent(t *testing.T) {
	f := New()
	img := buildImage(t, []string{"/"}, nil)
	if err := f.LoadImage(img); err != nil {
		t.Fatalf("LoadImage should tolerate '/' already existing: %v", err)
	}
}

func TestLoadImageRejectsBadMagic(t *testing.T) {
	f := New()
	if err := f.LoadImage([]byte("NOPE")); err == nil {
		t.Fatal("expected an error for a bad magic")
	}
}

func TestLoadImageRejectsTruncatedRecord(t *testing.T) {
	f := New()
	img := buildImage(t, nil, map[string]string{"/a": "data"})
	if err := f.LoadImage(img[:len(img)-2]); err == nil {
		t.Fatal("expected an error for a truncated payload")
	}
}
