package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoom(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected Room
		ok       bool
	}{
		{name: "Canonical", raw: "B-204", expected: Room{Block: "B", Number: "204"}, ok: true},
		{name: "Lower case with space", raw: " b 204 ", expected: Room{Block: "B", Number: "204"}, ok: true},
		{name: "Hash separator", raw: "C#12a", expected: Room{Block: "C", Number: "12A"}, ok: true},
		{name: "No separator", raw: "a12", expected: Room{Block: "A", Number: "12"}, ok: true},
		{name: "Word and number", raw: "Gym 2", ok: false},
		{name: "Short word and number", raw: "Apt 3", ok: false},
		{name: "Slash separator", raw: "D/7", expected: Room{Block: "D", Number: "7"}, ok: true},
		{name: "Free text", raw: "Lobby", ok: false},
		{name: "Digits only", raw: "101", ok: false},
		{name: "Empty", raw: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			room, ok := ParseRoom(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, room)
		})
	}
}

func TestCanonicalRoom(t *testing.T) {
	assert.Equal(t, "B-204", CanonicalRoom("b  204"))
	assert.Equal(t, "B-204", CanonicalRoom("B-204"))
	assert.Equal(t, "Common room", CanonicalRoom("  Common \t room "))
	assert.Equal(t, "101", CanonicalRoom("101"))
	assert.Equal(t, "Gym 2", CanonicalRoom("Gym 2"))
	assert.Equal(t, "Lab 1", CanonicalRoom(" Lab  1"))
}

func TestSameRoom(t *testing.T) {
	assert.True(t, SameRoom("b 204", "B-204"))
	assert.True(t, SameRoom("C#12a", "c-12A"))
	assert.True(t, SameRoom("gym 2", "Gym  2"))
	assert.False(t, SameRoom("B-204", "B-205"))
	assert.False(t, SameRoom("Gym 2", "G-2"))
}
