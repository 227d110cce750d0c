package dictionary

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// maxLineSize bounds a single tab-file line; some definitions are large HTML blobs.
const maxLineSize = 16 << 20

// ParseTab reads a "word<TAB>definition" file, one entry per line.
// Blank lines are skipped; a non-blank line without a tab is an error.
func ParseTab(data []byte) (Dictionary, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []Entry
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		word, def, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("tab dictionary line %d: missing tab separator", line)
		}
		entries = append(entries, Entry{Word: word, Definition: def})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tab dictionary line %d: %w", line+1, err)
	}
	return NewMemory(entries), nil
}
