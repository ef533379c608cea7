package identity

import (
	"sort"
	"strconv"
	"strings"
)

// Rank sorts identities in place for presentation. Identities backed by
// an official source come first. Within each class, identities with a
// numeric catalog number sort by that number ascending and precede
// identities without one. Remaining ties break on base name,
// case-insensitively.
func Rank(identities []PopIdentity) {
	sort.SliceStable(identities, func(i, j int) bool {
		a, b := &identities[i], &identities[j]

		if a.Official != b.Official {
			return a.Official
		}

		an, aok := numericNumber(a.Number)
		bn, bok := numericNumber(b.Number)
		switch {
		case aok && bok:
			if an != bn {
				return an < bn
			}
		case aok != bok:
			return aok
		}

		return strings.ToLower(a.BaseName) < strings.ToLower(b.BaseName)
	})
}

func numericNumber(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
