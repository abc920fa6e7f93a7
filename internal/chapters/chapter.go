package chapters

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Chapter is one entry of a title's chapter list. Index is 1-based and
// fixed by the list order, so filtering never renumbers folders.
type Chapter struct {
	Index int
	URL   string
}

// FromURLs numbers urls in list order.
func FromURLs(urls []string) []Chapter {
	out := make([]Chapter, len(urls))
	for i, u := range urls {
		out[i] = Chapter{Index: i + 1, URL: u}
	}
	return out
}

// Width is the zero-padding used for n entries: at least two digits, wider
// when needed so names still sort lexicographically.
func Width(n int) int {
	w := len(strconv.Itoa(n))
	if w < 2 {
		return 2
	}
	return w
}

// IndexName formats a 1-based index padded for total entries.
func IndexName(i, total int) string {
	return fmt.Sprintf("%0*d", Width(total), i)
}

// FolderName is the chapter directory name inside the title directory.
func (c Chapter) FolderName(total int) string {
	return IndexName(c.Index, total)
}

func (c Chapter) Dir(root string, total int) string {
	return filepath.Join(root, c.FolderName(total))
}

// PagePath is the file a page is written to. The extension is always .jpg,
// matching what the site serves.
func PagePath(dir string, page, total int) string {
	return filepath.Join(dir, IndexName(page, total)+".jpg")
}

var reUnderscore = regexp.MustCompile(`_+`)

// SanitizeTitle makes a title usable as a directory and archive name.
// Letters of any script are kept.
func SanitizeTitle(s string) string {
	repl := []string{
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		clean = append(clean, r)
	}
	s = reUnderscore.ReplaceAllString(string(clean), "_")

	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".")
	if s == "" {
		return "untitled"
	}

	return s
}
