package parse

import "time"

// Status classifies a transcript line.
type Status int

const (
	NotHeader    Status = iota // body text
	HeaderOK                   // well-formed header with a valid timestamp
	BadTimestamp               // header shape, but the timestamp does not parse
)

// Header is the author line that opens a record, e.g.
// "2025-03-01 10:00:00 Alice(111)".
type Header struct {
	Time     time.Time
	Nickname string
	AuthorID string
}

// Record is one header plus the body lines that follow it.
type Record struct {
	Header
	Line int      // 1-based line number of the header
	Body []string // trimmed body lines, separator lines excluded
}
