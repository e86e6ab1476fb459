package doom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioCatalog(t *testing.T) {
	require.Len(t, Scenarios, 10)
	for i, s := range Scenarios {
		assert.Equal(t, i, s.Level)
		assert.Equal(t, s.Name+".cfg", s.Config)
		assert.Contains(t, []int{2, 3, 5, 7, 20}, s.Actions)
	}
}

func TestLookupScenario(t *testing.T) {
	s, err := LookupScenario(8)
	require.NoError(t, err)
	assert.Equal(t, "deathmatch", s.Name)
	assert.Equal(t, 20, s.Actions)

	_, err = LookupScenario(10)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
	_, err = LookupScenario(-1)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
}

func TestScenarioByName(t *testing.T) {
	s, ok := ScenarioByName("take_cover")
	require.True(t, ok)
	assert.Equal(t, 7, s.Level)
	assert.Equal(t, 2, s.Actions)

	_, ok = ScenarioByName("e1m1")
	assert.False(t, ok)
}
