package parse

import (
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// A single block letter, an optional separator, then the room number with
	// an optional trailing letter: "B-204", "b 204", "C#12a", "A12".
	roomRe = regexp.MustCompile(`^([A-Za-z])\s*[-#/ ]?\s*(\d{1,5}[A-Za-z]?)$`)
)

// Room is a room reference split into its block and number.
type Room struct {
	Block  string
	Number string
}

// String renders the canonical "BLOCK-NUMBER" form.
func (r Room) String() string {
	return r.Block + "-" + r.Number
}

// ParseRoom splits raw into block and number. ok is false when raw does not
// look like a block-and-number room reference.
func ParseRoom(raw string) (room Room, ok bool) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	m := roomRe.FindStringSubmatch(s)
	if m == nil {
		return Room{}, false
	}
	return Room{Block: strings.ToUpper(m[1]), Number: strings.ToUpper(m[2])}, true
}

// CanonicalRoom normalises raw so equivalent spellings of a room compare
// equal. Free-form locations such as "Lobby" or "Gym 2" are returned with
// whitespace collapsed and otherwise unchanged. The result is a comparison
// key; stored room numbers keep the spelling they were filed with.
func CanonicalRoom(raw string) string {
	if room, ok := ParseRoom(raw); ok {
		return room.String()
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
}

// SameRoom reports whether a and b name the same room. Free-form locations
// compare case-insensitively.
func SameRoom(a, b string) bool {
	return strings.EqualFold(CanonicalRoom(a), CanonicalRoom(b))
}
