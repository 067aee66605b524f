package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Viewport is the rectangle of the workspace plane shown on a canvas, in
// meters.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether (x, y) lies inside the viewport.
func (v Viewport) Contains(x, y float64) bool {
	return x >= v.MinX && x <= v.MaxX && y >= v.MinY && y <= v.MaxY
}

// Expand grows the viewport to include (x, y) plus margin.
func (v Viewport) Expand(x, y, margin float64) Viewport {
	v.MinX = math.Min(v.MinX, x-margin)
	v.MaxX = math.Max(v.MaxX, x+margin)
	v.MinY = math.Min(v.MinY, y-margin)
	v.MaxY = math.Max(v.MaxY, y+margin)
	return v
}

// Canvas is a braille dot matrix of Width x Height cells, so 2*Width x
// 4*Height dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	View          Viewport
}

func NewCanvas(w, h int, view Viewport) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h), View: view}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether the dot (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a dot line with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Project maps workspace coordinates to dot coordinates, y pointing up.
func (c *Canvas) Project(x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	sx := (x - c.View.MinX) / (c.View.MaxX - c.View.MinX)
	sy := (y - c.View.MinY) / (c.View.MaxY - c.View.MinY)
	return int(math.Round(sx * w)), int(math.Round((1 - sy) * h))
}

// Plot lights the dot under the workspace point (x, y).
func (c *Canvas) Plot(x, y float64) {
	if !c.View.Contains(x, y) {
		return
	}
	c.Set(c.Project(x, y))
}

// Mark draws a 3x3 dot block centered on the workspace point (x, y).
func (c *Canvas) Mark(x, y float64) {
	if !c.View.Contains(x, y) {
		return
	}
	px, py := c.Project(x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(px+dx, py+dy)
		}
	}
}

// Circle draws the outline of a workspace circle.
func (c *Canvas) Circle(x, y, radius float64) {
	const n = 48
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		c.Plot(x+radius*math.Cos(a), y+radius*math.Sin(a))
	}
}

// Segment draws a workspace segment clipped to the viewport by sampling.
func (c *Canvas) Segment(x0, y0, x1, y1 float64) {
	if c.View.Contains(x0, y0) && c.View.Contains(x1, y1) {
		ax, ay := c.Project(x0, y0)
		bx, by := c.Project(x1, y1)
		c.DrawLine(ax, ay, bx, by)
		return
	}
	n := 2 * (c.Width + c.Height)
	for i := 0; i <= n; i++ {
		s := float64(i) / float64(n)
		c.Plot(x0+s*(x1-x0), y0+s*(y1-y0))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Bounds returns the viewport enclosing the points with margin as a
// fraction of each span. Zero spans are widened to one.
func Bounds(xs, ys []float64, margin float64) Viewport {
	v := Viewport{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for i := range xs {
		v.MinX, v.MaxX = math.Min(v.MinX, xs[i]), math.Max(v.MaxX, xs[i])
	}
	for i := range ys {
		v.MinY, v.MaxY = math.Min(v.MinY, ys[i]), math.Max(v.MaxY, ys[i])
	}
	if len(xs) == 0 {
		v.MinX, v.MaxX = 0, 0
	}
	if len(ys) == 0 {
		v.MinY, v.MaxY = 0, 0
	}
	widen := func(lo, hi float64) (float64, float64) {
		span := hi - lo
		if span == 0 {
			return lo - 0.5, hi + 0.5
		}
		return lo - margin*span, hi + margin*span
	}
	v.MinX, v.MaxX = widen(v.MinX, v.MaxX)
	v.MinY, v.MaxY = widen(v.MinY, v.MaxY)
	return v
}

// PhaseCanvas draws the curve (xs[i], ys[i]) on a new canvas fitted to it.
func PhaseCanvas(xs, ys []float64, w, h int) *Canvas {
	n := min(len(xs), len(ys))
	c := NewCanvas(w, h, Bounds(xs[:n], ys[:n], 0.05))
	for i := 0; i < n; i++ {
		px, py := c.Project(xs[i], ys[i])
		if i == 0 {
			c.Set(px, py)
			continue
		}
		qx, qy := c.Project(xs[i-1], ys[i-1])
		c.DrawLine(qx, qy, px, py)
	}
	return c
}
