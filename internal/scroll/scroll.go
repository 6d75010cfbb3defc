// Package scroll computes the scroll-linked state of the landing page: the
// reading progress bar, the compact header, the sticky call-to-action, and
// the implementation timeline.
package scroll

// Page thresholds in CSS pixels.
const (
	HeaderThreshold    = 50
	StickyCTAThreshold = 800
	HeaderOffset       = 80
)

// Rect is an element's bounding box relative to the viewport.
type Rect struct {
	Top    float64
	Bottom float64
}

// Height returns Bottom - Top.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// InView reports whether any part of r is inside a viewport of height vh.
func (r Rect) InView(vh float64) bool {
	return r.Top < vh && r.Bottom > 0
}

// Progress returns how far the page is scrolled, in percent. A page that
// fits the viewport reports 0.
func Progress(scrollTop, scrollHeight, clientHeight float64) float64 {
	scrollable := scrollHeight - clientHeight
	if scrollable <= 0 {
		return 0
	}
	p := scrollTop / scrollable * 100
	return clamp(p, 0, 100)
}

// HeaderScrolled reports whether the header switches to its compact style.
func HeaderScrolled(scrollTop float64) bool {
	return scrollTop > HeaderThreshold
}

// StickyCTAVisible reports whether the floating call-to-action shows. It
// hides while the lead form itself is on screen.
func StickyCTAVisible(scrollTop float64, lead Rect, viewportHeight float64) bool {
	return scrollTop > StickyCTAThreshold && !lead.InView(viewportHeight)
}

// TimelineState is the fill and step activation of the timeline.
type TimelineState struct {
	// Progress is the filled height in pixels, within [0, container height].
	Progress float64
	// Percent is Progress as a share of the container height.
	Percent float64
	Active  []bool
}

// ActiveCount returns how many steps are active.
func (s TimelineState) ActiveCount() int {
	n := 0
	for _, a := range s.Active {
		if a {
			n++
		}
	}
	return n
}

// Timeline fills the timeline up to the middle of the viewport. itemTops are
// the viewport-relative tops of each step; a step is active once the fill
// reaches it.
func Timeline(container Rect, viewportHeight float64, itemTops []float64) TimelineState {
	height := container.Height()
	if height < 0 {
		height = 0
	}
	progress := clamp(viewportHeight/2-container.Top, 0, height)

	st := TimelineState{
		Progress: progress,
		Active:   make([]bool, len(itemTops)),
	}
	if height > 0 {
		st.Percent = progress / height * 100
	}
	for i, top := range itemTops {
		st.Active[i] = progress >= top-container.Top
	}
	return st
}

// AnchorOffset is the scroll target for an in-page link, leaving room for
// the fixed header.
func AnchorOffset(elementTop, scrollY float64) float64 {
	return elementTop + scrollY - HeaderOffset
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
