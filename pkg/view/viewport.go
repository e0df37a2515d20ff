package view

// Zoom limits and the home transform.
const (
	MinScale = 0.2
	MaxScale = 3.0

	HomeX     = 40.0
	HomeY     = 40.0
	HomeScale = 0.85
)

// Viewport is a pan/zoom transform from layout coordinates to screen
// coordinates: screen = layout × K + (X, Y). Width and Height are the
// canvas size used for centering.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	K      float64 `json:"k"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// NewViewport returns the home transform for a canvas of the given size.
func NewViewport(width, height float64) Viewport {
	v := Viewport{Width: width, Height: height}
	v.Reset()
	return v
}

// Reset returns to the home transform.
func (v *Viewport) Reset() {
	v.X, v.Y, v.K = HomeX, HomeY, HomeScale
}

// Resize changes the canvas size. The transform is kept.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// Center pans so the layout point (x, y) is in the middle of the canvas.
// The scale is kept.
func (v *Viewport) Center(x, y float64) {
	v.X = v.Width/2 - x*v.K
	v.Y = v.Height/2 - y*v.K
}

// Pan moves the transform by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// Zoom multiplies the scale by factor, keeping the screen point (px, py)
// fixed. The scale is clamped to [MinScale, MaxScale].
func (v *Viewport) Zoom(factor, px, py float64) {
	lx, ly := v.Invert(px, py)
	v.K = clampScale(v.K * factor)
	v.X = px - lx*v.K
	v.Y = py - ly*v.K
}

// Apply maps a layout point to the screen.
func (v Viewport) Apply(x, y float64) (float64, float64) {
	return x*v.K + v.X, y*v.K + v.Y
}

// Invert maps a screen point back to layout coordinates.
func (v Viewport) Invert(sx, sy float64) (float64, float64) {
	return (sx - v.X) / v.K, (sy - v.Y) / v.K
}

func (v *Viewport) clamp() {
	if v.K == 0 {
		v.Reset()
		return
	}
	v.K = clampScale(v.K)
}

func clampScale(k float64) float64 {
	return min(max(k, MinScale), MaxScale)
}
