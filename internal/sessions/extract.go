package sessions

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// Markers returned by Extract when a message has nothing readable.
const (
	NoInfo    = "[no info]"
	NoContent = "[no content]"
)

// Ellipsis is appended by Truncate when it shortens a string.
const Ellipsis = "..."

// Extract returns a short human-readable summary of a message payload:
// the summary title, else the summary body, else NoContent. Absent or null
// payloads yield NoInfo. It never fails.
func Extract(info []byte) string {
	if isAbsent(info) {
		return NoInfo
	}

	summary, typ, _, err := jsonparser.Get(info, "summary")
	if err != nil || typ != jsonparser.Object {
		return NoContent
	}

	if title := stringField(summary, "title"); title != "" {
		return title
	}
	if body := stringField(summary, "body"); body != "" {
		return body
	}
	return NoContent
}

// Truncate shortens s to at most max runes, appending Ellipsis when it cuts.
// Strings within the cap are returned unchanged.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + Ellipsis
}

// Role reads the "role" field of a raw payload, or "" when missing.
func Role(info []byte) string {
	return strings.TrimSpace(stringField(info, "role"))
}

// stringField looks up a string value under the given key path, as is.
// Missing keys, non-string values and malformed JSON all yield "".
func stringField(data []byte, keys ...string) string {
	v, err := jsonparser.GetString(data, keys...)
	if err != nil {
		return ""
	}
	return v
}

func isAbsent(info []byte) bool {
	trimmed := bytes.TrimSpace(info)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
