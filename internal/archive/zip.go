package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Zip writes every file under root into out, named relative to root's parent
// so the archive opens to <title>/<chapter>/<page>. When only names chapter
// folders, the rest of the tree is left out.
func Zip(root, out string, only ...string) (err error) {
	root = filepath.Clean(root)
	if info, serr := os.Stat(root); serr != nil {
		return fmt.Errorf("zip: %w", serr)
	} else if !info.IsDir() {
		return fmt.Errorf("zip: %s is not a directory", root)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	z := zip.NewWriter(f)
	defer func() {
		if cerr := z.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	parent := filepath.Dir(root)
	absOut, _ := filepath.Abs(out)
	set := newChapterSet(only)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if path != root && filepath.Dir(path) == root && !set.has(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absOut {
			return nil
		}

		rel, rerr := filepath.Rel(parent, path)
		if rerr != nil {
			return rerr
		}

		return addFileToZip(z, path, filepath.ToSlash(rel))
	})
}

func addFileToZip(z *zip.Writer, file, name string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("error closing input file %s: %v", file, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}
