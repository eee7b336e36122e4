// Package nickname produces display names for accounts that have not picked one.
package nickname

import (
	"crypto/rand"
	"math/big"
	"strings"

	"santaswishlist/internal/validation"
)

// Fallback is used when neither an email nor the random source yields a name
const Fallback = "Elf"

var adjectives = []string{
	"jolly", "merry", "frosty", "snowy", "twinkly", "cosy", "sparkly", "cheerful",
	"festive", "gleeful", "glowing", "jingly", "starry", "sugary", "toasty", "wintry",
	"bright", "brave", "clever", "kindly", "lucky", "magic", "nimble", "rosy",
}

var nouns = []string{
	"reindeer", "snowman", "elf", "sleigh", "stocking", "snowflake", "candycane", "gingerbread",
	"mitten", "pinecone", "penguin", "polarbear", "icicle", "lantern", "bell", "star",
	"ornament", "nutcracker", "cocoa", "sprout", "owl", "robin", "fox", "holly",
}

// Avatars are the glyphs offered as profile avatars
var Avatars = []string{"🎅", "🤶", "🧝", "⛄", "🦌", "🎄", "🎁", "⭐", "🍪", "🔔"}

// Generate returns a random name in the form "adjective-noun"
func Generate() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	return adjective + "-" + noun, nil
}

// FromEmail derives a username from the local part of an email address.
// When that is not a valid username it falls back to a generated name, then
// to Fallback.
func FromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if validation.ValidateUsername(local) == nil {
		return local
	}

	if name, err := Generate(); err == nil && name != "" {
		return name
	}
	return Fallback
}

// RandomAvatar picks one of the Avatars glyphs
func RandomAvatar() (string, error) {
	return randomElement(Avatars)
}

// IsAvatar reports whether glyph is one of the offered avatars
func IsAvatar(glyph string) bool {
	for _, a := range Avatars {
		if a == glyph {
			return true
		}
	}
	return false
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
