package doom

import (
	"fmt"

	"github.com/zeu5/doomgym/engine"
	"github.com/zeu5/doomgym/types"
)

// toObservation moves the channel axis of a screen buffer last
func toObservation(b engine.Buffer) types.Observation {
	obs := types.NewObservation([]int{b.Height, b.Width, b.Channels})
	plane := b.Height * b.Width
	for c := 0; c < b.Channels; c++ {
		src := b.Data[c*plane : (c+1)*plane]
		for i, v := range src {
			obs.Data[i*b.Channels+c] = v
		}
	}
	return obs
}

// concatWidth places right next to left, both channel first
func concatWidth(left, right engine.Buffer) (engine.Buffer, error) {
	if left.Channels != right.Channels || left.Height != right.Height {
		return engine.Buffer{}, fmt.Errorf("cannot place a %dx%dx%d buffer next to a %dx%dx%d buffer",
			right.Channels, right.Height, right.Width, left.Channels, left.Height, left.Width)
	}
	out := engine.NewBuffer(left.Channels, left.Height, left.Width+right.Width)
	for c := 0; c < left.Channels; c++ {
		for y := 0; y < left.Height; y++ {
			dst := (c*out.Height + y) * out.Width
			l := (c*left.Height + y) * left.Width
			r := (c*right.Height + y) * right.Width
			copy(out.Data[dst:dst+left.Width], left.Data[l:l+left.Width])
			copy(out.Data[dst+left.Width:dst+out.Width], right.Data[r:r+right.Width])
		}
	}
	return out, nil
}

// OneHot encodes an action index as per button activations
func OneHot(action, n int) ([]float64, error) {
	if action < 0 || action >= n {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrActionOutOfRange, action, n)
	}
	buttons := make([]float64, n)
	buttons[action] = 1
	return buttons, nil
}
