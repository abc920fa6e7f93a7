package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
)

type Options struct {
	Title      string
	Lang       string
	Author     string
	Identifier string

	// Cover is a local image file. It is embedded when present and removed
	// once the book is written.
	Cover string

	// ChapterTitle formats a chapter directory name for the table of
	// contents. Defaults to DefaultChapterTitle for Lang.
	ChapterTitle func(dir string) string

	// Chapters limits the archive to these chapter folder names. Empty
	// means every folder under the root.
	Chapters []string
}

// DefaultChapterTitle is "第<dir>话" for Chinese books and "Chapter <dir>"
// otherwise.
func DefaultChapterTitle(lang string) func(dir string) string {
	if lang == "" || strings.HasPrefix(strings.ToLower(lang), "zh") {
		return func(dir string) string { return "第" + dir + "话" }
	}
	return func(dir string) string { return "Chapter " + dir }
}

// Summary describes what went into a book.
type Summary struct {
	Chapters int
	Pages    int
	Cover    bool
}

// EPUB writes one XHTML page per image. Chapters and pages follow name
// order; the first page of each chapter carries the chapter entry in the
// table of contents and the rest nest under it.
func EPUB(root, out string, opts Options) (Summary, error) {
	var sum Summary

	title := opts.Title
	if title == "" {
		title = filepath.Base(root)
	}
	chapterTitle := opts.ChapterTitle
	if chapterTitle == nil {
		chapterTitle = DefaultChapterTitle(opts.Lang)
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return sum, fmt.Errorf("epub: %w", err)
	}
	if opts.Lang != "" {
		e.SetLang(opts.Lang)
	}
	if opts.Author != "" {
		e.SetAuthor(opts.Author)
	}
	if opts.Identifier != "" {
		e.SetIdentifier(opts.Identifier)
	}

	if opts.Cover != "" {
		if _, serr := os.Stat(opts.Cover); serr == nil {
			name := "cover" + strings.ToLower(filepath.Ext(opts.Cover))
			internal, err := e.AddImage(opts.Cover, name)
			if err != nil {
				return sum, fmt.Errorf("epub cover: %w", err)
			}
			if err := e.SetCover(internal, ""); err != nil {
				return sum, fmt.Errorf("epub cover: %w", err)
			}
			sum.Cover = true
		}
	}

	dirs, err := chapterDirs(root, opts.Chapters)
	if err != nil {
		return sum, fmt.Errorf("epub: %w", err)
	}

	for ci, dir := range dirs {
		files, err := pages(filepath.Join(root, dir))
		if err != nil {
			return sum, fmt.Errorf("epub chapter %s: %w", dir, err)
		}
		if len(files) == 0 {
			continue
		}

		heading := chapterTitle(dir)
		parent := ""

		for i, file := range files {
			idx := i + 1
			ext := strings.ToLower(filepath.Ext(file))

			src, err := e.AddImage(filepath.Join(root, dir, file), fmt.Sprintf("img_%d_%d%s", ci, idx, ext))
			if err != nil {
				return sum, fmt.Errorf("epub image %s/%s: %w", dir, file, err)
			}

			body := fmt.Sprintf(`<img src="%s" alt="page %d" style="max-width:100%%;height:auto;"/>`, src, idx)
			page := fmt.Sprintf("%d_%d.xhtml", ci, idx)

			if parent == "" {
				parent, err = e.AddSection(body, heading, page, "")
			} else {
				_, err = e.AddSubSection(parent, body, fmt.Sprintf("%s - page %d", heading, idx), page, "")
			}
			if err != nil {
				return sum, fmt.Errorf("epub page %s/%s: %w", dir, file, err)
			}
			sum.Pages++
		}
		sum.Chapters++
	}

	if sum.Pages == 0 {
		return sum, fmt.Errorf("epub: no pages under %s", root)
	}

	if err := e.Write(out); err != nil {
		return sum, fmt.Errorf("epub: %w", err)
	}

	if sum.Cover {
		_ = os.Remove(opts.Cover)
	}

	return sum, nil
}
