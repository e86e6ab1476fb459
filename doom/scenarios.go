package doom

import (
	"errors"
	"fmt"
)

// ErrLevelOutOfRange is returned for a level outside the catalog
var ErrLevelOutOfRange = errors.New("level out of range")

// Scenario selects the engine configuration and the size of the
// discrete action space
type Scenario struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	Config  string `json:"config"`
	Actions int    `json:"actions"`
}

// Scenarios is the catalog, indexed by level
var Scenarios = []Scenario{
	{Level: 0, Name: "basic", Config: "basic.cfg", Actions: 3},
	{Level: 1, Name: "deadly_corridor", Config: "deadly_corridor.cfg", Actions: 7},
	{Level: 2, Name: "defend_the_center", Config: "defend_the_center.cfg", Actions: 3},
	{Level: 3, Name: "defend_the_line", Config: "defend_the_line.cfg", Actions: 3},
	{Level: 4, Name: "health_gathering", Config: "health_gathering.cfg", Actions: 3},
	{Level: 5, Name: "my_way_home", Config: "my_way_home.cfg", Actions: 5},
	{Level: 6, Name: "predict_position", Config: "predict_position.cfg", Actions: 3},
	{Level: 7, Name: "take_cover", Config: "take_cover.cfg", Actions: 2},
	{Level: 8, Name: "deathmatch", Config: "deathmatch.cfg", Actions: 20},
	{Level: 9, Name: "health_gathering_supreme", Config: "health_gathering_supreme.cfg", Actions: 3},
}

// LookupScenario returns the scenario of the given level
func LookupScenario(level int) (Scenario, error) {
	if level < 0 || level >= len(Scenarios) {
		return Scenario{}, fmt.Errorf("%w: %d not in [0, %d)", ErrLevelOutOfRange, level, len(Scenarios))
	}
	return Scenarios[level], nil
}

// ScenarioByName finds a scenario by its name
func ScenarioByName(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
