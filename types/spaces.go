package types

import (
	"golang.org/x/exp/rand"
)

// Discrete action space {0, ..., N-1}
type Discrete struct {
	N int `json:"n"`
}

func (d Discrete) Contains(a int) bool {
	return a >= 0 && a < d.N
}

func (d Discrete) Sample(r *rand.Rand) int {
	return r.Intn(d.N)
}

// Box is a space of uint8 tensors with a fixed shape and bounds
type Box struct {
	Low   uint8 `json:"low"`
	High  uint8 `json:"high"`
	Shape []int `json:"shape"`
}

// Size is the number of elements of a tensor in the space
func (b Box) Size() int {
	return shapeSize(b.Shape)
}

func (b Box) Contains(o Observation) bool {
	if !o.HasShape(b.Shape) {
		return false
	}
	for _, v := range o.Data {
		if v < b.Low || v > b.High {
			return false
		}
	}
	return true
}

// Zero returns the all zero observation of the space's shape
func (b Box) Zero() Observation {
	return NewObservation(b.Shape)
}
