package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	"github.com/Zuo-Peng/chat-affinity/internal/textenc"
)

// OpenAuthor opens the transcript in $EDITOR at the first in-window header
// of authorID, or at the top when the author has none.
func OpenAuthor(path, authorID string, window analyze.Window) error {
	text, _, err := textenc.ReadFile(path)
	if err != nil {
		return err
	}
	line := AuthorLine(parse.SplitLines(text), authorID, window)
	if line < 1 {
		line = 1
	}
	return OpenAt(path, line)
}

// AuthorLine returns the 1-based line of the first in-window header of
// authorID, or 0.
func AuthorLine(lines []string, authorID string, window analyze.Window) int {
	for i, l := range lines {
		h, status := parse.ParseHeader(l)
		if status == parse.HeaderOK && h.AuthorID == authorID && window.Contains(h.Time) {
			return i + 1
		}
	}
	return 0
}

// OpenAt opens path in $EDITOR (less when unset) at lineNum.
func OpenAt(path string, lineNum int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
