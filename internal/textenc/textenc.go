// Package textenc turns raw export bytes into text. Exports are UTF-8 or a
// legacy CJK encoding (GB18030 by default, Big5 when detected).
package textenc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

const (
	UTF8    = "UTF-8"
	GB18030 = "GB18030"
	Big5    = "Big5"
)

// ErrUndecodable is returned when the bytes do not look like text in any
// supported encoding.
var ErrUndecodable = errors.New("unrecognized text encoding (expected UTF-8 or GBK/GB18030)")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns b as text together with the charset it was read as.
func Decode(b []byte) (string, string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), UTF8, nil
	}

	charset := Detect(b)
	var enc encoding.Encoding = simplifiedchinese.GB18030
	if charset == Big5 {
		enc = traditionalchinese.Big5
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", charset, fmt.Errorf("decode %s: %w", charset, ErrUndecodable)
	}
	text := string(out)
	if mostlyReplacement(text) {
		return "", charset, ErrUndecodable
	}
	return text, charset, nil
}

// Detect guesses the legacy charset of non-UTF-8 bytes, falling back to
// GB18030.
func Detect(b []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || res == nil {
		return GB18030
	}
	switch strings.ToLower(res.Charset) {
	case "big5":
		return Big5
	case "utf-8":
		return UTF8
	default:
		return GB18030
	}
}

// ReadFile reads and decodes a transcript file.
func ReadFile(path string) (string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	text, charset, err := Decode(b)
	if err != nil {
		return "", charset, fmt.Errorf("%s: %w", path, err)
	}
	return text, charset, nil
}

func mostlyReplacement(s string) bool {
	total, bad := 0, 0
	for _, r := range s {
		total++
		if r == utf8.RuneError {
			bad++
		}
	}
	return total > 0 && bad*2 > total
}
