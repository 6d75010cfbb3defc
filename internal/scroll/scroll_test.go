package scroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name                string
		top, height, client float64
		want                float64
	}{
		{"top of page", 0, 3000, 1000, 0},
		{"halfway", 1000, 3000, 1000, 50},
		{"bottom", 2000, 3000, 1000, 100},
		{"overscroll clamps", 2100, 3000, 1000, 100},
		{"nothing to scroll", 0, 800, 800, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.top, tt.height, tt.client), 1e-9)
		})
	}
}

func TestHeaderScrolled(t *testing.T) {
	assert.False(t, HeaderScrolled(50))
	assert.True(t, HeaderScrolled(51))
}

func TestStickyCTAVisible(t *testing.T) {
	offscreen := Rect{Top: 1500, Bottom: 2200}
	onscreen := Rect{Top: 300, Bottom: 1000}
	above := Rect{Top: -900, Bottom: -10}

	assert.False(t, StickyCTAVisible(800, offscreen, 900), "threshold is exclusive")
	assert.True(t, StickyCTAVisible(801, offscreen, 900))
	assert.False(t, StickyCTAVisible(2000, onscreen, 900))
	assert.True(t, StickyCTAVisible(5000, above, 900))
}

func TestTimeline(t *testing.T) {
	container := Rect{Top: 200, Bottom: 1200}
	items := []float64{200, 450, 700, 950}

	st := Timeline(container, 1000, items)
	// vh/2 - top = 300
	assert.InDelta(t, 300, st.Progress, 1e-9)
	assert.InDelta(t, 30, st.Percent, 1e-9)
	assert.Equal(t, []bool{true, true, false, false}, st.Active)
	assert.Equal(t, 2, st.ActiveCount())
}

func TestTimeline_Clamped(t *testing.T) {
	below := Timeline(Rect{Top: 900, Bottom: 1900}, 1000, []float64{900})
	assert.Zero(t, below.Progress)
	assert.Equal(t, []bool{true}, below.Active, "first step sits at the container top")

	past := Timeline(Rect{Top: -3000, Bottom: -2000}, 1000, []float64{-3000, -2500})
	assert.InDelta(t, 1000, past.Progress, 1e-9)
	assert.InDelta(t, 100, past.Percent, 1e-9)
	assert.Equal(t, 2, past.ActiveCount())
}

func TestAnchorOffset(t *testing.T) {
	assert.InDelta(t, 1120, AnchorOffset(400, 800), 1e-9)
}
