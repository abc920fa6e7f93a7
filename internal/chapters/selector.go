package chapters

import (
	"strconv"
	"strings"
)

// Filter narrows all by a range ("5-12") or a list ("1,3,5"). Range wins
// when both are set; with neither, all chapters are returned.
func Filter(all []Chapter, rng string, list string) []Chapter {
	if rng != "" {
		return FilterChapterRange(all, rng)
	}
	if list != "" {
		return FilterChapterList(all, list)
	}
	return all
}

func FilterChapterRange(all []Chapter, rng string) []Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}
	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || end > len(all) {
		return nil
	}
	return all[start-1 : end]
}

func FilterChapterList(all []Chapter, list string) []Chapter {
	out := []Chapter{}
	seen := map[int]bool{}
	for _, n := range strings.Split(list, ",") {
		idx, err := atoi(n)
		if err != nil || seen[idx] {
			continue
		}
		if idx > 0 && idx <= len(all) {
			seen[idx] = true
			out = append(out, all[idx-1])
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
