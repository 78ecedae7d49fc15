package textenc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const sample = "2025-03-01 10:00:00 小明(10001)\n" +
	"今天我们一起去吃饭吗？我的对象说这是一个很好的地方，大家都在那里聊天。\n" +
	"2025-03-01 10:01:00 小红(10002)\n" +
	"好的，我也要去。你们说的是哪一家？我们可以先在群里看一下时间和地点。\n"

func TestDecode_UTF8(t *testing.T) {
	text, charset, err := Decode([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, UTF8, charset)
	assert.Equal(t, sample, text)
}

func TestDecode_StripsBOM(t *testing.T) {
	text, _, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, sample...))
	require.NoError(t, err)
	assert.Equal(t, sample, text)
}

func TestDecode_GB18030(t *testing.T) {
	raw, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(sample))
	require.NoError(t, err)

	text, charset, err := Decode(raw)
	require.NoError(t, err)
	assert.NotEqual(t, UTF8, charset)
	assert.Equal(t, sample, text)
}

func TestReadFile(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(sample))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	text, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample, text)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestMostlyReplacement(t *testing.T) {
	assert.False(t, mostlyReplacement("abc"))
	assert.False(t, mostlyReplacement(""))
	assert.True(t, mostlyReplacement("\uFFFD\uFFFDa"))
}
