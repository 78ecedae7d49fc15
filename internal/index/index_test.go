package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "caf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeExport(t *testing.T, path string, authors map[string]string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("===== 消息记录 =====\n")
	ids := []string{"111", "222", "333"}
	for _, id := range ids {
		body, ok := authors[id]
		if !ok {
			continue
		}
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&b, "2025-03-%02d 10:00:00 user%s(%s)\n%s\n\n", i+1, id, id, body)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func testOptions(t *testing.T) Options {
	t.Helper()
	w, err := analyze.ParseWindow("2025-03-01", "2025-04-01")
	require.NoError(t, err)
	return Options{
		Window:  w,
		Lexicon: lexicon.Merge(lexicon.NewTier("a", 1, "恋爱"), lexicon.NewTier("b", 5, "冲")),
	}
}

func TestAnalyzeFile_ArchivesAndServesFromCache(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "group.txt")
	writeExport(t, path, map[string]string{"111": "恋爱", "222": "冲冲", "333": "hello"})
	opts := testOptions(t)

	first, err := AnalyzeFile(db, path, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, "222", first.Rows[0].AuthorID)
	assert.Equal(t, 1, first.Rows[0].Rank)
	assert.Equal(t, 1000.0, first.Rows[0].Index)
	assert.Equal(t, "冲", first.Rows[0].TopKeyword)
	assert.Equal(t, "111", first.Rows[1].AuthorID)
	assert.Equal(t, "UTF-8", first.Run.Charset)
	assert.NotZero(t, first.Run.ID)

	second, err := AnalyzeFile(db, path, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Run.ID, second.Run.ID)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 2, second.Run.RowCount)
}

func TestAnalyzeFile_RecomputesOnChange(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "group.txt")
	writeExport(t, path, map[string]string{"111": "恋爱"})
	opts := testOptions(t)

	first, err := AnalyzeFile(db, path, opts)
	require.NoError(t, err)

	// different lexicon
	other := opts
	other.Lexicon = lexicon.Merge(lexicon.NewTier("a", 2, "恋爱"))
	res, err := AnalyzeFile(db, path, other)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 200.0, res.Rows[0].Index)

	// different file content
	writeExport(t, path, map[string]string{"111": "恋爱恋爱恋爱"})
	res, err = AnalyzeFile(db, path, opts)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 300.0, res.Rows[0].Index)

	// the replaced run for the same key is gone
	_, err = db.GetRun(first.Run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	// NoCache recomputes even when nothing changed
	opts.NoCache = true
	res, err = AnalyzeFile(db, path, opts)
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestAnalyzeFile_WithoutDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.txt")
	writeExport(t, path, map[string]string{"111": "恋爱"})

	res, err := AnalyzeFile(nil, path, testOptions(t))
	require.NoError(t, err)
	assert.Zero(t, res.Run.ID)
	assert.Len(t, res.Rows, 1)

	_, err = AnalyzeFile(nil, path+".missing", testOptions(t))
	assert.Error(t, err)
}

func TestAnalyzeAll_CountsErrors(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "a.txt"), map[string]string{"111": "恋爱"})
	broken := filepath.Join(root, "broken.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "nowhere"), broken))

	results, stats, err := AnalyzeAll(nil, root, testOptions(t))
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Analyzed)
	assert.Equal(t, 1, stats.Errors)
}

func TestAnalyzeAll(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "a.txt"), map[string]string{"111": "恋爱"})
	writeExport(t, filepath.Join(root, "sub", "b.txt"), map[string]string{"222": "nothing"})
	opts := testOptions(t)

	results, stats, err := AnalyzeAll(db, root, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Analyzed)
	assert.Equal(t, 1, stats.Empty)
	assert.Zero(t, stats.Errors)
	assert.Len(t, results, 2)

	_, stats, err = AnalyzeAll(db, root, opts)
	require.NoError(t, err)
	assert.Zero(t, stats.Analyzed)
	assert.Equal(t, 2, stats.Cached)

	require.NoError(t, os.Remove(filepath.Join(root, "a.txt")))
	_, stats, err = AnalyzeAll(db, root, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pruned)
	assert.Contains(t, stats.String(), "pruned=1")
}

func TestDB_RunLifecycle(t *testing.T) {
	db := openTestDB(t)

	run := &Run{
		RunKey:    RunKey{FilePath: "/x/a.txt", Mtime: 1, Size: 2, StartDate: "2025-01-01", EndDate: "2026-01-01", LexiconFP: "fp"},
		Charset:   "UTF-8",
		LineCount: 10,
		CreatedAt: "2025-06-01T00:00:00Z",
	}
	rows := []analyze.Row{
		{Rank: 1, AuthorID: "1", Nickname: "甲", Index: 120.5, Score: 24, Messages: 20, TopKeyword: "冲",
			Hits: []analyze.KeywordHit{{Word: "冲", Count: 4}, {Word: "恋爱", Count: 4}}, FirstLine: 3},
		{Rank: 2, AuthorID: "2", Nickname: "", Index: 9.09, Score: 1, Messages: 11, TopKeyword: "恋爱",
			Hits: []analyze.KeywordHit{{Word: "恋爱", Count: 1}}, FirstLine: 7},
	}

	id, err := db.SaveRun(run, rows)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)

	got, err := db.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, run.RunKey, got.RunKey)
	assert.Equal(t, 2, got.RowCount)

	gotRows, err := db.GetRows(id)
	require.NoError(t, err)
	assert.Equal(t, rows, gotRows)

	found, err := db.FindRun(run.RunKey)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)

	missing := run.RunKey
	missing.Mtime = 99
	found, err = db.FindRun(missing)
	require.NoError(t, err)
	assert.Nil(t, found)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	n, err := db.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.DeleteRun(id))
	assert.ErrorIs(t, db.DeleteRun(id), ErrRunNotFound)

	n, err = db.RowCount()
	require.NoError(t, err)
	assert.Zero(t, n, "rows cascade with their run")

	n, err = db.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caf.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	_, err = db.SaveRun(&Run{RunKey: RunKey{FilePath: "/a", StartDate: "s", EndDate: "e", LexiconFP: "f"}}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
