// Package translation loads the line-oriented translation resources that
// pair a record id with its translated text fields.
//
// A resource is a UTF-8 text made of blocks of N+1 lines followed by one
// separator line, where N is the number of text fields of the governing
// format. One line of each block carries the id as "ID=<digits>"; the others
// are the text fields in declared order.
package translation

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// MaxTextFields bounds the number of text fields a block may carry; larger
// blocks are the symptom of a misaligned resource and are dropped.
const MaxTextFields = 511

var idPattern = regexp.MustCompile(`ID=([0-9]+)`)

var unescaper = strings.NewReplacer(`\n `, "\n", `\n`, "\n")

// Table maps a record id to its translated strings in declared field order
type Table struct {
	entries map[uint64][]string
}

// Load parses data into a table. textFields is the number of text fields of
// the format the resource translates and idLine the position of the id line
// within a block, clamped to the last line. Only the first block of a given
// id is kept; a missing or unparsable id becomes 0.
func Load(data []byte, textFields, idLine int) *Table {
	t := &Table{entries: make(map[uint64][]string)}
	if textFields > MaxTextFields {
		return t
	}

	lines := splitLines(data)
	blockLines := textFields + 1 // id line + text lines
	stride := blockLines + 1     // separator
	if idLine < 0 {
		idLine = 0
	}
	if idLine >= blockLines {
		idLine = blockLines - 1
	}

	for i := 0; i < len(lines); i += stride {
		block := make([]string, blockLines)
		for j := range block {
			if i+j < len(lines) {
				block[j] = unescaper.Replace(lines[i+j])
			}
		}

		id := parseID(block[idLine])
		if _, exists := t.entries[id]; exists {
			continue
		}
		t.entries[id] = append(block[:idLine:idLine], block[idLine+1:]...)
	}

	return t
}

// Lookup returns the translated strings for id
func (t *Table) Lookup(id uint64) ([]string, bool) {
	v, ok := t.entries[id]
	return v, ok
}

// Len returns the number of ids in the table
func (t *Table) Len() int {
	return len(t.entries)
}

func parseID(line string) uint64 {
	m := idPattern.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func splitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
