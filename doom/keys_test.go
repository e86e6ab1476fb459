package doom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeysToAction(t *testing.T) {
	expected := map[KeyCombo]int{
		Combo():    2,
		Combo('a'): 0,
		Combo('d'): 1,
		Combo('w'): 3,
		Combo('s'): 4,
		Combo('q'): 5,
		Combo('e'): 6,
	}
	assert.Equal(t, expected, KeysToAction())
}

func TestKeysToActionReturnsCopy(t *testing.T) {
	m := KeysToAction()
	m[Combo('a')] = 42
	delete(m, Combo('d'))

	fresh := KeysToAction()
	assert.Equal(t, 0, fresh[Combo('a')])
	assert.Contains(t, fresh, Combo('d'))
}

func TestCombo(t *testing.T) {
	assert.Equal(t, Combo('a', 'w'), Combo('w', 'a'))
	assert.Equal(t, Combo('a'), Combo('a', 'a'))
	assert.Equal(t, "a+w", Combo('w', 'a').String())
	assert.Equal(t, "<none>", Combo().String())
	assert.Equal(t, []rune{'a', 'w'}, Combo('w', 'a').Keys())
}

func TestSortedCombos(t *testing.T) {
	combos := SortedCombos()
	assert.Equal(t, []KeyCombo{
		Combo('a'), Combo('d'), Combo(), Combo('w'), Combo('s'), Combo('q'), Combo('e'),
	}, combos)
}
