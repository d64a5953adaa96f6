package layer

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// FormatSize renders a byte count the way layer reports print it: plain bytes
// below 10, kilobytes below 10 KiB, megabytes otherwise. Values are rounded to
// two decimals and keep at least one ("5b", "2.0kb", "2.5kb", "0.01mb").
func FormatSize(size int64) string {
	kb := float64(size) / 1024
	mb := kb / 1024

	switch {
	case size < 10:
		return strconv.FormatInt(size, 10) + "b"
	case kb < 10:
		return formatFloat(kb) + "kb"
	default:
		return formatFloat(mb) + "mb"
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ShortTag returns the version part of an image reference
// ("nginx:1.25" → "1.25"). References without a tag are returned unchanged.
// A colon belonging to a registry port is not treated as a tag separator.
func ShortTag(ref string) string {
	i := strings.LastIndex(ref, ":")
	if i < 0 || strings.Contains(ref[i+1:], "/") {
		return ref
	}
	return ref[i+1:]
}

// ShortTags returns the sorted short names of n's tags.
func ShortTags(n *Node) []string {
	out := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		out[i] = ShortTag(t)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
