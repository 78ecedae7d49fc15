package parse

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// TimeLayout is the timestamp layout used by header lines.
const TimeLayout = "2006-01-02 15:04:05"

// SeparatorPrefix marks export delimiter lines, which never carry content.
const SeparatorPrefix = "==="

var headerRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) (.*)\((\d+)\)\s*$`)

// ParseHeader classifies a single trimmed line. Timestamps are read as
// naive wall-clock times in UTC.
func ParseHeader(line string) (Header, Status) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return Header{}, NotHeader
	}
	ts, err := time.ParseInLocation(TimeLayout, m[1], time.UTC)
	if err != nil {
		return Header{}, BadTimestamp
	}
	return Header{
		Time:     ts,
		Nickname: strings.TrimSpace(m[2]),
		AuthorID: m[3],
	}, HeaderOK
}

// IsSeparator reports whether a trimmed line is an export delimiter.
func IsSeparator(line string) bool {
	return strings.HasPrefix(line, SeparatorPrefix)
}

// SplitLines splits text into whitespace-trimmed lines. Any Unicode line
// boundary ends a line: "\n", "\r\n", a lone "\r", VT, FF, the FS/GS/RS
// separators, NEL, U+2028 and U+2029. A final terminator does not start an
// extra empty line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, strings.TrimSpace(text[start:i]))
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, strings.TrimSpace(text[start:]))
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
