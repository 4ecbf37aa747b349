package fs

import (
	"encoding/binary"
	"fmt"

	"github.com/kuzuos/kuzuos/internal/kerrors"
)

// imageMagic matches cmd/fsimage's output format exactly: a 4-byte magic
// followed by records of {kind byte}{pathLen uint16}{path}{dataLen
// uint32}{data}, directories before files.
const imageMagic = "KFSI"

const (
	imageKindDir  = 0
	imageKindFile = 1
)

// LoadImage seeds f from a cmd/fsimage-produced binary blob. The boot path
// (internal/boot.KernelMain) does not call it; the kernel starts with an
// empty filesystem. Directories are created before files regardless of record
// order, since a record order cmd/fsimage didn't actually produce could
// still reach here from a hand-edited image.
func (f *FS) LoadImage(data []byte) error {
	if len(data) < len(imageMagic) || string(data[:len(imageMagic)]) != imageMagic {
		return fmt.Errorf("fs: bad image magic")
	}
	data = data[len(imageMagic):]

	type record struct {
		kind byte
		path string
		body []byte
	}
	var records []record

	for len(data) > 0 {
		if len(data) < 3 {
			return fmt.Errorf("fs: truncated image record header")
		}
		kind := data[0]
		pathLen := binary.LittleEndian.Uint16(data[1:3])
		data = data[3:]
		if len(data) < int(pathLen)+4 {
			return fmt.Errorf("fs: truncated image record body")
		}
		path := string(data[:pathLen])
		data = data[pathLen:]
		dataLen := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]
		if len(data) < int(dataLen) {
			return fmt.Errorf("fs: truncated image record payload")
		}
		body := data[:dataLen]
		data = data[dataLen:]
		records = append(records, record{kind: kind, path: path, body: body})
	}

	for _, r := range records {
		if r.kind != imageKindDir {
			continue
		}
		// "/" always already exists (New creates it); any manifest that
		// lists it explicitly should not fail the whole load over it.
		if err := f.Mkdir(r.path); err != nil && err != kerrors.EEXIST {
			return fmt.Errorf("fs: mkdir %s: %w", r.path, err)
		}
	}
	for _, r := range records {
		if r.kind != imageKindFile {
			continue
		}
		if err := f.Create(r.path, r.body); err != nil {
			return fmt.Errorf("fs: create %s: %w", r.path, err)
		}
	}
	return nil
}
