package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Stats are the run totals. Failed chapters count separately from the
// complete and partial ones.
type Stats struct {
	Chapters       atomic.Int64
	FailedChapters atomic.Int64
	Images         atomic.Int64
	FailedImages   atomic.Int64
	Bytes          atomic.Int64
}

func (s *Stats) Print(w io.Writer, took time.Duration) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Download Summary:")
	_, _ = fmt.Fprintf(w, "Chapters: %d (%d failed)\n", s.Chapters.Load(), s.FailedChapters.Load())
	_, _ = fmt.Fprintf(w, "Images:   %d (%d failed)\n", s.Images.Load(), s.FailedImages.Load())
	_, _ = fmt.Fprintf(w, "Data:     %s\n", Human(s.Bytes.Load()))
	_, _ = fmt.Fprintf(w, "Time:     %s\n", took.Round(time.Second))
}

// Human formats a byte count with binary units.
func Human(n int64) string {
	const unit = 1 << 10
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 2; v /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
