package pipeline

import (
	"path/filepath"

	"github.com/brogergvhs/mangafetch/internal/chapters"
	"github.com/brogergvhs/mangafetch/internal/fetch"
	"github.com/brogergvhs/mangafetch/internal/providers"
)

// ChapterJob tracks one chapter through resolve, dispatch and retry.
type ChapterJob struct {
	Index    int
	Name     string
	URL      string
	Dir      string
	Tasks    []*fetch.Task
	Results  []fetch.Result
	State    State
	Attempts int
	Err      error
}

// FailedImages counts failed results of the last dispatch.
func (j *ChapterJob) FailedImages() int {
	n := 0
	for _, r := range j.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// TitleContext is built once per run from the landing page.
type TitleContext struct {
	ID       string
	Title    string
	CoverURL string
	Root     string
	Chapters []*ChapterJob
}

// NewTitleContext lays out <output>/<title>/<NN> for the selected chapters.
// Folder width follows the full chapter list so names do not depend on the
// selection.
func NewTitleContext(t providers.Title, output string, selected []chapters.Chapter) *TitleContext {
	name := chapters.SanitizeTitle(t.Name)
	tc := &TitleContext{
		ID:       t.ID,
		Title:    name,
		CoverURL: t.CoverURL,
		Root:     filepath.Join(output, name),
	}

	total := len(t.Chapters)
	for _, c := range selected {
		tc.Chapters = append(tc.Chapters, &ChapterJob{
			Index: c.Index,
			Name:  c.FolderName(total),
			URL:   c.URL,
			Dir:   c.Dir(tc.Root, total),
			State: Pending,
		})
	}

	return tc
}
