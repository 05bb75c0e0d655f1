package sessions

import (
	"bytes"
	"strings"
)

// Matches reports whether the serialized payload contains query,
// ignoring case. The test is plain text containment over the JSON form;
// it does not interpret message structure. Absent payloads and empty
// queries never match.
func Matches(info []byte, query string) bool {
	if isAbsent(info) || query == "" {
		return false
	}
	return bytes.Contains(bytes.ToLower(info), []byte(strings.ToLower(query)))
}

// CountMatches returns how many messages match query and the index of the
// first matching message, or -1 when none do.
func CountMatches(msgs []Message, query string) (count, first int) {
	first = -1
	for i, m := range msgs {
		if !Matches(m.Info, query) {
			continue
		}
		if first < 0 {
			first = i
		}
		count++
	}
	return count, first
}

// Filter returns the messages whose payload matches query, in order.
func Filter(msgs []Message, query string) []Message {
	var out []Message
	for _, m := range msgs {
		if Matches(m.Info, query) {
			out = append(out, m)
		}
	}
	return out
}

// ByRole returns the messages with the given role, in order.
func ByRole(msgs []Message, role string) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
