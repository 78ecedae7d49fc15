package parse

// Records groups lines into records. Lines before the first header, blank
// lines, separator lines and headers with a bad timestamp are dropped; a
// bad-timestamp header does not close the record it interrupts.
func Records(lines []string) []Record {
	var records []Record
	cur := -1

	for i, line := range lines {
		h, status := ParseHeader(line)
		switch status {
		case HeaderOK:
			records = append(records, Record{Header: h, Line: i + 1})
			cur = len(records) - 1
		case BadTimestamp:
			continue
		default:
			if cur < 0 || line == "" || IsSeparator(line) {
				continue
			}
			records[cur].Body = append(records[cur].Body, line)
		}
	}
	return records
}
