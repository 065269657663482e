package pdg

import "math"

// Circular layout parameters, in canvas units.
const (
	LayoutCenterX = 300.0
	LayoutCenterY = 200.0
	LayoutRadius  = 150.0
)

// CircularPosition places node index out of total evenly on a circle
// around the canvas centre, starting at angle zero (to the right of the
// centre) and moving clockwise in screen coordinates.
func CircularPosition(index, total int) (x, y float64) {
	if total <= 0 {
		return LayoutCenterX, LayoutCenterY
	}
	angle := 2 * math.Pi * float64(index) / float64(total)
	return LayoutCenterX + LayoutRadius*math.Cos(angle),
		LayoutCenterY + LayoutRadius*math.Sin(angle)
}
