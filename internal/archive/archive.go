// Package archive turns a downloaded title tree (<title>/<chapter>/<page>)
// into a single ZIP or EPUB file.
package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Mode string

const (
	ModeZip  Mode = "zip"
	ModeEPUB Mode = "epub"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeZip, "":
		return ModeZip, nil
	case ModeEPUB:
		return ModeEPUB, nil
	default:
		return "", fmt.Errorf("unknown archive format %q (want zip or epub)", s)
	}
}

// Ext is the file extension written for m, with the dot.
func (m Mode) Ext() string {
	return "." + string(m)
}

// Write archives root into out using m. Only one format is produced per call.
// opts.Chapters limits the archive to those chapter folders.
func Write(m Mode, root, out string, opts Options) error {
	switch m {
	case ModeZip:
		return Zip(root, out, opts.Chapters...)
	case ModeEPUB:
		_, err := EPUB(root, out, opts)
		return err
	default:
		return fmt.Errorf("unknown archive format %q", m)
	}
}

// Contents lists the entry names of a ZIP container (EPUB included), sorted.
func Contents(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	return names, nil
}

var imageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func isImage(name string) bool {
	return imageExt[strings.ToLower(filepath.Ext(name))]
}

// chapterSet is nil when every chapter folder is wanted.
type chapterSet map[string]bool

func newChapterSet(only []string) chapterSet {
	if len(only) == 0 {
		return nil
	}
	set := make(chapterSet, len(only))
	for _, name := range only {
		set[name] = true
	}
	return set
}

func (s chapterSet) has(name string) bool {
	return s == nil || s[name]
}

// chapterDirs returns the subdirectories of root that are in only (all of
// them when only is empty), sorted by name.
func chapterDirs(root string, only []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	set := newChapterSet(only)
	var out []string
	for _, e := range entries {
		if e.IsDir() && set.has(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)

	return out, nil
}

// pages returns the image files of dir sorted by name.
func pages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() && isImage(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)

	return out, nil
}
