package levels

import "fmt"

// TileLayer is an optional grid of solid tiles. Rows are strings where '#' marks a
// solid tile and any other rune is empty.
type TileLayer struct {
	Size   float64  `json:"size"`
	Origin point    `json:"origin"`
	Rows   []string `json:"rows"`
}

func (t *TileLayer) validate() error {
	if !(t.Size > 0) {
		return fmt.Errorf("%w: tile size %v", ErrInvalidLevel, t.Size)
	}
	return nil
}

func (t *TileLayer) dims() (w, h int) {
	for _, row := range t.Rows {
		w = max(w, len(row))
	}
	return w, len(t.Rows)
}

func (t *TileLayer) solid(x, y int) bool {
	row := t.Rows[y]
	return x < len(row) && row[x] == '#'
}

// Merge greedily combines contiguous solid tiles into as few rectangles as it can,
// expanding each one along the row first and then downwards.
func (t *TileLayer) Merge() []Rect {
	if t == nil || !(t.Size > 0) {
		return nil
	}
	width, height := t.dims()
	processed := make([]bool, width*height)
	open := func(x, y int) bool {
		return !processed[y*width+x] && t.solid(x, y)
	}

	var out []Rect
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !open(x, y) {
				processed[y*width+x] = true
				continue
			}

			w := 1
			for x+w < width && open(x+w, y) {
				w++
			}

			h := 1
		heightLoop:
			for y+h < height {
				for xi := x; xi < x+w; xi++ {
					if !open(xi, y+h) {
						break heightLoop
					}
				}
				h++
			}

			out = append(out, Rect{
				X:      t.Origin.X + float64(x)*t.Size,
				Y:      t.Origin.Y + float64(y)*t.Size,
				Width:  float64(w) * t.Size,
				Height: float64(h) * t.Size,
			})
			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*width+xx] = true
				}
			}
		}
	}
	return out
}
