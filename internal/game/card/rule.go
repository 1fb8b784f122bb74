package card

import "sort"

// Less orders cards by the default suit-major key.
func Less(a, b Card) bool { return a.Key() < b.Key() }

// Compare returns -1, 0 or 1 comparing a and b by the default key.
func Compare(a, b Card) int {
	switch ka, kb := a.Key(), b.Key(); {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// Sort orders cards in place with the given less function.
func Sort(cards []Card, less func(a, b Card) bool) {
	sort.SliceStable(cards, func(i, j int) bool { return less(cards[i], cards[j]) })
}
