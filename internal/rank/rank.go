package rank

import (
	"sort"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
)

// Rank sorts rows by index, highest first, and numbers them 1..n. Rows
// with equal index keep their input order and still get distinct ranks.
// The slice is sorted in place and returned.
func Rank(rows []analyze.Row) []analyze.Row {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Index > rows[j].Index
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Top returns at most n leading rows of an already ranked slice.
func Top(rows []analyze.Row, n int) []analyze.Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
