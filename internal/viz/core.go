package viz

import (
	"math"

	"github.com/san-kum/reactorsim/internal/reactor"
)

const (
	coreCells     = 20
	coreRows      = 10
	rodCount      = 5
	hotThreshold  = 300.0 // °C
	fullScaleTemp = 800.0 // °C at which the fill reaches the lid
)

// DrawCore renders the vessel with the coolant temperature as a fill level
// and the control rods lowered to their insertion depth. It reports whether
// the core is above the hot threshold.
func DrawCore(c *Canvas, s reactor.Snapshot) (hot bool) {
	c.Clear()
	w, h := c.Width*2-1, c.Height*4-1
	c.Rect(0, 0, w, h)

	level := math.Max(0, math.Min(1, s.Temperature/fullScaleTemp))
	if fill := int(level * float64(h-2)); fill > 0 {
		c.FillRect(2, h-1-fill, w-2, h-2)
	}

	depth := int(s.Controls.RodInsertion * float64(h-1))
	for i := 1; i <= rodCount; i++ {
		x := i * w / (rodCount + 1)
		for y := 0; y <= depth; y++ {
			c.Set(x, y)
			c.Set(x+1, y)
		}
	}

	return s.Temperature > hotThreshold
}
