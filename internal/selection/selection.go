// Package selection parses the episode and soundbite selectors accepted on
// the command line and in configuration.
package selection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"audiogram/internal/services"
)

// ParseEpisodes resolves an episode selector against a feed of latest
// episodes. Accepted forms: a number, a comma list, "all" or "a", and
// "last". An empty selector means "last".
func ParseEpisodes(value string, latest int) ([]int, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if latest <= 0 {
		return nil, invalid("episodes", "feed has no episodes")
	}
	switch v {
	case "", "last":
		return []int{latest}, nil
	case "all", "a":
		return sequence(latest), nil
	}
	return parseList("episode", v, latest)
}

// ParseSoundbites resolves a soundbite selector for an episode with count
// soundbites. Accepted forms: a number, a comma list, "all" or "a". An
// empty selector means all.
func ParseSoundbites(value string, count int) ([]int, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "all", "a":
		return sequence(count), nil
	}
	if count <= 0 {
		return nil, invalid("soundbites", "episode has no soundbites")
	}
	return parseList("soundbite", v, count)
}

func parseList(kind, v string, limit int) ([]int, error) {
	var nums []int
	for part := range strings.SplitSeq(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || strings.ContainsAny(part, "+-") {
			return nil, invalid(kind+"s", fmt.Sprintf("non-numeric value %q", part))
		}
		if n < 1 || n > limit {
			return nil, invalid(kind+"s", fmt.Sprintf("%s %d out of range 1-%d", kind, n, limit))
		}
		if !slices.Contains(nums, n) {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return nil, invalid(kind+"s", "no valid "+kind+"s specified")
	}
	return nums, nil
}

func sequence(n int) []int {
	out := make([]int, 0, max(n, 0))
	for i := range n {
		out = append(out, i+1)
	}
	return out
}

func invalid(op, msg string) error {
	return services.Wrap(services.ErrValidation, "selection", op, msg, nil)
}
