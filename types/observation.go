package types

import (
	"fmt"
	"image"
	"image/color"
)

// Observation is a frame in height x width x channels layout
type Observation struct {
	Shape []int   `json:"shape"`
	Data  []uint8 `json:"data"`
}

// NewObservation returns a zero filled observation of the given shape
func NewObservation(shape []int) Observation {
	s := make([]int, len(shape))
	copy(s, shape)
	return Observation{
		Shape: s,
		Data:  make([]uint8, shapeSize(s)),
	}
}

func shapeSize(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	size := 1
	for _, d := range shape {
		size *= d
	}
	return size
}

func (o Observation) Height() int {
	return o.dim(0)
}

func (o Observation) Width() int {
	return o.dim(1)
}

func (o Observation) Channels() int {
	return o.dim(2)
}

func (o Observation) dim(i int) int {
	if i >= len(o.Shape) {
		return 0
	}
	return o.Shape[i]
}

// At returns the value at row y, column x, channel c
func (o Observation) At(y, x, c int) uint8 {
	return o.Data[(y*o.Width()+x)*o.Channels()+c]
}

// HasShape reports whether the observation has exactly the given shape
func (o Observation) HasShape(shape []int) bool {
	if len(o.Shape) != len(shape) {
		return false
	}
	for i := range shape {
		if o.Shape[i] != shape[i] {
			return false
		}
	}
	return len(o.Data) == shapeSize(shape)
}

// IsZero reports whether every byte is zero
func (o Observation) IsZero() bool {
	for _, b := range o.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Image converts a one or three channel observation into an image
func (o Observation) Image() (image.Image, error) {
	if len(o.Shape) != 3 || len(o.Data) != shapeSize(o.Shape) {
		return nil, fmt.Errorf("observation shape %v does not describe %d bytes", o.Shape, len(o.Data))
	}
	h, w := o.Height(), o.Width()
	rect := image.Rect(0, 0, w, h)
	switch o.Channels() {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, o.Data)
		return img, nil
	case 3:
		img := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: o.At(y, x, 0),
					G: o.At(y, x, 1),
					B: o.At(y, x, 2),
					A: 0xff,
				})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("cannot build an image from %d channels", o.Channels())
	}
}
