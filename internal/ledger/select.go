package ledger

import (
	"strconv"
	"strings"
)

// Select narrows the work queue by 1-based position. rng takes the form
// "a-b", list the form "1,3,5". With both empty the queue is returned as is;
// rng wins over list.
func Select(urls []string, rng, list string) []string {
	if rng != "" {
		return selectRange(urls, rng)
	}
	if list != "" {
		return selectList(urls, list)
	}

	return urls
}

func selectRange(urls []string, rng string) []string {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || end > len(urls) {
		return nil
	}

	return urls[start-1 : end]
}

func selectList(urls []string, list string) []string {
	out := []string{}
	for p := range strings.SplitSeq(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		idx, err := atoi(p)
		if err != nil || idx <= 0 || idx > len(urls) {
			continue
		}
		out = append(out, urls[idx-1])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
