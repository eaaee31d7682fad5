package ffmpeg

import "strings"

// ConcatList renders paths as an ffconcat script for the concat demuxer.
// Paths are single-quoted; an embedded quote is closed, escaped and reopened
// ('\''), which is the only escape the demuxer's quoting rules need.
func ConcatList(paths []string) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, p := range paths {
		b.WriteString("file ")
		b.WriteString(quote(p))
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
