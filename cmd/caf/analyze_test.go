package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAnalyze writes a config with a March 2025 window and two tiers, and
// an export where 111 and 222 each post the given number of messages.
func setupAnalyze(t *testing.T, messages int) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
db_path = %q
start_date = "2025-03-01"
end_date = "2025-04-01"

[[tier]]
name = "low"
weight = 1
words = "恋爱"

[[tier]]
name = "high"
weight = 5
words = "冲"
`, filepath.Join(dir, "caf.db"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0o644))
	t.Setenv("CAF_CONFIG", filepath.Join(dir, "config.toml"))

	var b strings.Builder
	b.WriteString("===== 消息对象:群聊 =====\n")
	for i := 0; i < messages; i++ {
		fmt.Fprintf(&b, "2025-03-%02d 10:00:00 Alice(111)\n冲冲\n\n", i+1)
		fmt.Fprintf(&b, "2025-03-%02d 11:00:00 鲍勃(222)\n恋爱\n\n", i+1)
	}
	path := filepath.Join(dir, "group.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func runAnalyze(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	cmd := analyzeCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String(), errOut.String()
}

func TestAnalyzeCmd_TSVWhenPiped(t *testing.T) {
	path := setupAnalyze(t, 11)

	stdout, stderr := runAnalyze(t, "--no-archive", path)

	assert.Equal(t, []string{
		"rank\tnickname\tauthor_id\tindex\tscore\tmessages\ttop_keyword",
		"1\tAlice\t111\t1000.00\t110\t11\t冲",
		"2\t鲍勃\t222\t100.00\t11\t11\t恋爱",
	}, strings.Split(strings.TrimSuffix(stdout, "\n"), "\n"))
	assert.Contains(t, stderr, "group.txt: ")
	assert.Contains(t, stderr, "2 authors (analyzed)")
	assert.NotContains(t, stderr, noMatches)
}

func TestAnalyzeCmd_NoAuthorPassesThreshold(t *testing.T) {
	path := setupAnalyze(t, 10)

	stdout, stderr := runAnalyze(t, "--no-archive", path)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "0 authors")
	assert.Contains(t, stderr, noMatches)
}

func TestAnalyzeCmd_PlainDrawsTopChart(t *testing.T) {
	path := setupAnalyze(t, 11)

	stdout, _ := runAnalyze(t, "--no-archive", "--plain", path)
	assert.Contains(t, stdout, "Top keyword")
	assert.Contains(t, stdout, "Top 2 by index")
	assert.Contains(t, stdout, "█")
	assert.NotContains(t, stdout, "rank\t")

	stdout, _ = runAnalyze(t, "--no-archive", "--plain", "--chart", "0", path)
	assert.Contains(t, stdout, "Alice")
	assert.NotContains(t, stdout, "by index")
}

func TestChartFlagDefault(t *testing.T) {
	assert.Equal(t, "10", analyzeCmd().Flags().Lookup("chart").DefValue)
	assert.Equal(t, "10", showCmd().Flags().Lookup("chart").DefValue)
}

