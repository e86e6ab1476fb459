package doom

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// KeyCombo is a set of keys pressed together, stored as the sorted key
// characters. The empty combo means no key pressed.
type KeyCombo string

// Combo builds the KeyCombo of the given keys in any order
func Combo(keys ...rune) KeyCombo {
	sorted := make([]rune, len(keys))
	copy(sorted, keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return KeyCombo(sorted)
}

func (k KeyCombo) Keys() []rune {
	return []rune(string(k))
}

func (k KeyCombo) String() string {
	if k == "" {
		return "<none>"
	}
	return strings.Join(strings.Split(string(k), ""), "+")
}

// only one key at a time is mapped
var keysToAction = map[KeyCombo]int{
	Combo():    2,
	Combo('a'): 0,
	Combo('d'): 1,
	Combo('w'): 3,
	Combo('s'): 4,
	Combo('q'): 5,
	Combo('e'): 6,
}

// KeysToAction maps keyboard combinations to action indices for manual
// play. The mapping is fixed and shared by every environment.
func KeysToAction() map[KeyCombo]int {
	out := make(map[KeyCombo]int, len(keysToAction))
	for k, v := range keysToAction {
		out[k] = v
	}
	return out
}

// SortedCombos lists the mapped combos ordered by action index
func SortedCombos() []KeyCombo {
	combos := maps.Keys(keysToAction)
	slices.SortFunc(combos, func(a, b KeyCombo) int {
		return keysToAction[a] - keysToAction[b]
	})
	return combos
}
