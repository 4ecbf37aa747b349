// Package fs is the tiny in-RAM filesystem named as an external
// collaborator in the spec's scope table (out of scope beyond its
// interface): a flat table of named entries with no real block device
// underneath, modeled on the original C kernel's fs_file_entry/fs_header
// pair (original_source/src/filesystem.h, fs_create_file/fs_read_file/
// fs_delete_file/fs_list_files/fs_file_exists). Entries are kept in a map
// keyed by path; listings are sorted by name.
package fs

import (
	"path"
	"sort"
	"strings"

	"github.com/kuzuos/kuzuos/internal/kerrors"
)

// MaxFiles and MaxFileSize mirror the original's fixed-capacity table
// (FS_MAGIC's struct fs_header had a 64-entry array); this port keeps the
// same ceiling rather than growing the table unbounded, since the spec's
// heap has no notion of a filesystem cache to spill into.
const (
	MaxFiles    = 64
	MaxFileSize = 1 << 20
)

type entry struct {
	path  string
	isDir bool
	data  []byte
}

// FS is the flat in-RAM filesystem. The zero value is not usable; use
// New.
type FS struct {
	entries map[string]*entry
}

// New returns an FS with just the root directory present.
func New() *FS {
	f := &FS{entries: make(map[string]*entry)}
	f.entries["/"] = &entry{path: "/", isDir: true}
	return f
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	c := path.Clean("/" + p)
	return c
}

// Exists reports whether path names any entry, file or directory.
func (f *FS) Exists(p string) bool {
	_, ok := f.entries[clean(p)]
	return ok
}

// IsDir reports whether path names a directory.
func (f *FS) IsDir(p string) bool {
	e, ok := f.entries[clean(p)]
	return ok && e.isDir
}

func (f *FS) parentExists(p string) bool {
	dir := path.Dir(p)
	e, ok := f.entries[dir]
	return ok && e.isDir
}

// Create makes a regular file at path with the given contents, failing
// with -EEXIST if something is already there and -ENOENT if the parent
// directory does not exist (mirrors fs_create_file's "path must resolve"
// requirement).
func (f *FS) Create(p string, data []byte) error {
	p = clean(p)
	if f.Exists(p) {
		return kerrors.EEXIST
	}
	if !f.parentExists(p) {
		return kerrors.ENOENT
	}
	if len(f.entries) >= MaxFiles {
		return kerrors.EMFILE
	}
	if len(data) > MaxFileSize {
		return kerrors.EFAULT
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.entries[p] = &entry{path: p, data: cp}
	return nil
}

// Write overwrites an existing file's contents in place (fs_write_file);
// -ENOENT if it does not exist, -EPERM if it names a directory.
func (f *FS) Write(p string, data []byte) error {
	p = clean(p)
	e, ok := f.entries[p]
	if !ok {
		return kerrors.ENOENT
	}
	if e.isDir {
		return kerrors.EPERM
	}
	if len(data) > MaxFileSize {
		return kerrors.EFAULT
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	e.data = cp
	return nil
}

// Read returns the file's full contents (fs_read_file with max_size
// ignored since this port has no fixed user buffer to bound against
// until the syscall layer copies it out).
func (f *FS) Read(p string) ([]byte, error) {
	p = clean(p)
	e, ok := f.entries[p]
	if !ok {
		return nil, kerrors.ENOENT
	}
	if e.isDir {
		return nil, kerrors.EPERM
	}
	return e.data, nil
}

// Size returns the file's byte length (fs_get_file_size).
func (f *FS) Size(p string) (int, error) {
	data, err := f.Read(p)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Mkdir creates a directory entry; -EEXIST if occupied, -ENOENT if the
// parent is missing (fs_create_directory).
func (f *FS) Mkdir(p string) error {
	p = clean(p)
	if p == "/" || f.Exists(p) {
		return kerrors.EEXIST
	}
	if !f.parentExists(p) {
		return kerrors.ENOENT
	}
	f.entries[p] = &entry{path: p, isDir: true}
	return nil
}

// Remove deletes a file or an empty directory (fs_delete_file without
// recursive); removing a non-empty directory is -EPERM, removing
// something that does not exist is -ENOENT.
func (f *FS) Remove(p string) error {
	p = clean(p)
	if p == "/" {
		return kerrors.EPERM
	}
	e, ok := f.entries[p]
	if !ok {
		return kerrors.ENOENT
	}
	if e.isDir && f.hasChildren(p) {
		return kerrors.EPERM
	}
	delete(f.entries, p)
	return nil
}

func (f *FS) hasChildren(dir string) bool {
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	for k := range f.entries {
		if k != dir && strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// DirEntry is one line of a directory listing (fs_list_files).
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int
}

// List returns the immediate children of dir, sorted by name
// (fs_list_files walks the flat table and filters by parent path; this
// port does the same against the map).
func (f *FS) List(dir string) ([]DirEntry, error) {
	dir = clean(dir)
	if !f.IsDir(dir) {
		return nil, kerrors.ENOENT
	}
	var out []DirEntry
	for p, e := range f.entries {
		if p == dir || path.Dir(p) != dir {
			continue
		}
		out = append(out, DirEntry{Name: path.Base(p), IsDir: e.isDir, Size: len(e.data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListAll returns every entry in the table regardless of directory
// (fs_list_all), sorted by full path.
func (f *FS) ListAll() []DirEntry {
	out := make([]DirEntry, 0, len(f.entries))
	for p, e := range f.entries {
		out = append(out, DirEntry{Name: p, IsDir: e.isDir, Size: len(e.data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
