// Package randomname generates readable fallback usernames of the form
// "adjective-noun-xxxxxx". Used when a preferred name is already taken.
package randomname

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "cosmic", "crimson",
	"daring", "eager", "fuzzy", "gentle", "golden", "happy", "icy",
	"jolly", "keen", "lively", "lucky", "mellow", "misty", "nimble",
	"polar", "quiet", "rapid", "royal", "silent", "silver", "sunny",
	"swift", "tidy", "vivid", "wild", "witty", "zesty",
}

var nouns = []string{
	"badger", "beacon", "breeze", "canyon", "cedar", "comet", "coral",
	"falcon", "fjord", "glacier", "harbor", "heron", "lagoon", "lantern",
	"maple", "meadow", "nebula", "orchid", "osprey", "otter", "pebble",
	"pine", "prairie", "raven", "reef", "river", "sparrow", "summit",
	"thicket", "tide", "walnut", "willow",
}

// Generate returns a random "adjective-noun-xxxxxx" name, where the
// suffix is a 6-digit hex number. An optional check callback can reject
// candidates (e.g. names already taken); generation retries until the
// callback accepts.
func Generate(check func(name string) bool) string {
	for {
		candidate := fmt.Sprintf("%s-%s-%06x", pick(adjectives), pick(nouns), intn(1<<24))
		if check == nil || check(candidate) {
			return candidate
		}
	}
}

func pick(words []string) string {
	return words[intn(len(words))]
}

func intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform's entropy source is
		// broken; nothing sensible to fall back to here.
		panic(err)
	}
	return int(v.Int64())
}
