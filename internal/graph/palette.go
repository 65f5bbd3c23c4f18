package graph

import "image/color"

var palette = []color.NRGBA{
	{R: 0x00, G: 0xff, B: 0x41, A: 0xff},
	{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff},
	{R: 0xe6, G: 0x55, B: 0x3b, A: 0xff},
	{R: 0xf2, G: 0xc1, B: 0x2e, A: 0xff},
	{R: 0x72, G: 0x6c, B: 0xae, A: 0xff},
	{R: 0x51, G: 0x85, B: 0x4d, A: 0xff},
	{R: 0xd9, G: 0x4f, B: 0x9e, A: 0xff},
	{R: 0x4e, G: 0xc9, B: 0xd4, A: 0xff},
}

// Color returns the i-th color of the series palette, wrapping around in
// both directions.
func Color(i int) color.NRGBA {
	n := len(palette)
	return palette[((i%n)+n)%n]
}
