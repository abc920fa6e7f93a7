package chapters

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexName(t *testing.T) {
	assert.Equal(t, "01", IndexName(1, 9))
	assert.Equal(t, "12", IndexName(12, 40))
	assert.Equal(t, "007", IndexName(7, 120))
	assert.Equal(t, "120", IndexName(120, 120))
}

func TestChapterPaths(t *testing.T) {
	ch := FromURLs([]string{"a", "b", "c"})[2]
	assert.Equal(t, 3, ch.Index)
	assert.Equal(t, filepath.Join("root", "03"), ch.Dir("root", 3))
	assert.Equal(t, filepath.Join("root", "03", "05.jpg"), PagePath(ch.Dir("root", 3), 5, 20))
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "秘密教学", SanitizeTitle("  秘密教学 "))
	assert.Equal(t, "A_B_C", SanitizeTitle("A/B:?C"))
	assert.Equal(t, "untitled", SanitizeTitle(" .. "))
	assert.Equal(t, "Title", SanitizeTitle("Title\n"))
}

func TestFilter(t *testing.T) {
	all := FromURLs([]string{"u1", "u2", "u3", "u4", "u5"})

	assert.Len(t, Filter(all, "", ""), 5)

	rng := Filter(all, "2-4", "")
	assert.Equal(t, []int{2, 3, 4}, indexes(rng))

	assert.Nil(t, Filter(all, "4-9", ""))
	assert.Nil(t, Filter(all, "x-2", ""))

	list := Filter(all, "", "5, 1,1,9,x")
	assert.Equal(t, []int{5, 1}, indexes(list))
}

func indexes(cs []Chapter) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Index
	}
	return out
}
