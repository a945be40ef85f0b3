package repositories

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genUsername generates usernames within the registration charset
func genUsername() gopter.Gen {
	return gen.RegexMatch(`[A-Za-z0-9_]{3,20}`)
}

// TestProperty_PairKeySymmetric verifies the conversation identifier is
// order-independent and deterministic for any pair of usernames.
func TestProperty_PairKeySymmetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("PairKey(a,b) == PairKey(b,a)",
		prop.ForAll(
			func(a, b string) bool {
				return PairKey(a, b) == PairKey(b, a)
			},
			genUsername(),
			genUsername(),
		))

	properties.Property("PairKey is deterministic",
		prop.ForAll(
			func(a, b string) bool {
				return PairKey(a, b) == PairKey(a, b)
			},
			genUsername(),
			genUsername(),
		))

	properties.Property("PairKey contains both participants",
		prop.ForAll(
			func(a, b string) bool {
				key := PairKey(a, b)
				return strings.Contains(key, a) && strings.Contains(key, b)
			},
			genUsername(),
			genUsername(),
		))

	properties.TestingRun(t)
}
