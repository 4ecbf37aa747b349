// Command fsimage packs a directory of host files into the flat binary
// blob the kernel's internal/fs.FS seeds its in-RAM table from at boot,
// driven by a YAML manifest naming which host paths land at which kernel
// paths. Grounded on tinyrange-cc's internal/bundle.Metadata (a
// gopkg.in/yaml.v3-decoded manifest describing a directory's contents)
// and internal/oci/client.go's use of schollz/progressbar for long
// copies, since a filesystem image can run to megabytes of embedded
// binaries.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Manifest lists every host file to embed and the kernel path it should
// appear at, plus the directories internal/fs.New's root-only table needs
// created before any file under them can be written.
type Manifest struct {
	Version     int              `yaml:"version"`
	Directories []string         `yaml:"directories,omitempty"`
	Files       map[string]string `yaml:"files"` // kernel path -> host path, relative to the manifest's directory
}

// entryKind mirrors internal/fs's two entry shapes so the image format
// doesn't need a third vocabulary of its own.
type entryKind uint8

const (
	kindDir  entryKind = 0
	kindFile entryKind = 1
)

const imageMagic = "KFSI"

func main() {
	manifestPath := flag.String("manifest", "", "path to the fsimage YAML manifest (required)")
	out := flag.String("out", "", "output image path (required)")
	flag.Parse()

	if *manifestPath == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "fsimage: -manifest and -out are both required")
		os.Exit(1)
	}

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsimage: %v\n", err)
		os.Exit(1)
	}

	if err := build(m, filepath.Dir(*manifestPath), *out); err != nil {
		fmt.Fprintf(os.Stderr, "fsimage: %v\n", err)
		os.Exit(1)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return &m, nil
}

// build writes imageMagic, then one record per directory and per file:
// {kind byte}{pathLen uint16}{path}{dataLen uint32}{data}, directories
// first so internal/fs's loader (fs.LoadImage; the kernel's boot path does
// not call it) can Mkdir every parent before any Create
// that depends on it, the same ordering internal/fs.Create itself checks
// with parentExists.
func build(m *Manifest, baseDir, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(imageMagic); err != nil {
		return err
	}

	dirs := append([]string(nil), m.Directories...)
	sort.Strings(dirs)
	for _, d := range dirs {
		if err := writeRecord(f, kindDir, d, nil); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(m.Files))
	for kernelPath := range m.Files {
		names = append(names, kernelPath)
	}
	sort.Strings(names)

	bar := progressbar.DefaultBytes(-1, "packing fsimage")
	defer bar.Close()

	for _, kernelPath := range names {
		hostPath := filepath.Join(baseDir, m.Files[kernelPath])
		data, err := os.ReadFile(hostPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", hostPath, err)
		}
		if err := writeRecord(f, kindFile, kernelPath, data); err != nil {
			return err
		}
		bar.Add(len(data))
	}

	fmt.Printf("fsimage: packed %d director%s and %d file(s) into %s\n",
		len(dirs), plural(len(dirs)), len(names), outPath)
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func writeRecord(f *os.File, kind entryKind, path string, data []byte) error {
	if err := binary.Write(f, binary.LittleEndian, kind); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint16(len(path))); err != nil {
		return err
	}
	if _, err := f.WriteString(path); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := f.Write(data)
	return err
}
