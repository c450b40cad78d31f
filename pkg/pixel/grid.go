// Package pixel encodes 8x8 images into RGB332 payloads.
package pixel

import "fmt"

// Size is the width and height of the matrix.
const Size = 8

// PayloadSize is the number of bytes in an encoded grid, one per pixel.
const PayloadSize = Size * Size

// Grid is an 8x8 matrix of packed RGB332 pixels, indexed [row][col].
type Grid [Size][Size]byte

// Fill sets every pixel to c.
func (g *Grid) Fill(c byte) *Grid {
	for i := range g {
		for j := range g[i] {
			g[i][j] = c
		}
	}
	return g
}

// SetRGB sets the pixel at row i, column j from 8-bit channel values.
func (g *Grid) SetRGB(i, j int, r, gr, b uint8) {
	g[i][j] = RGB332(r, gr, b)
}

// Payload encodes the grid in row-major order: row 0 left-to-right,
// then row 1, and so on.
func (g *Grid) Payload() [PayloadSize]byte {
	var p [PayloadSize]byte
	for i := range g {
		copy(p[i*Size:(i+1)*Size], g[i][:])
	}
	return p
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) [Size]byte {
	return g[i]
}

// FromPayload decodes a row-major payload into a Grid.
func FromPayload(p [PayloadSize]byte) *Grid {
	var g Grid
	for i := range g {
		copy(g[i][:], p[i*Size:(i+1)*Size])
	}
	return &g
}

// FromBytes decodes a row-major slice which must be exactly PayloadSize long.
func FromBytes(b []byte) (*Grid, error) {
	if len(b) != PayloadSize {
		return nil, fmt.Errorf("pixel: need %d bytes, got %d", PayloadSize, len(b))
	}
	var p [PayloadSize]byte
	copy(p[:], b)
	return FromPayload(p), nil
}
