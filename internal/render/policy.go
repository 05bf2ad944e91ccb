package render

import "baliance.com/gooxml/measurement"

// Rect is a shape frame in slide coordinates.
type Rect struct {
	X, Y, W, H measurement.Distance
}

// LayoutPolicy holds the fixed geometry and styling of the decorations drawn
// on top of template placeholders.
type LayoutPolicy struct {
	TitleLayoutName    string
	TitleLayoutIndex   int
	ContentLayoutName  string
	ContentLayoutIndex int

	BulletLevel int32
	BulletSize  measurement.Distance

	ImageFrame     Rect
	ImageFill      RGB
	ImageLineWidth measurement.Distance
	CaptionGap     measurement.Distance
	CaptionHeight  measurement.Distance
	CaptionSize    measurement.Distance
	CaptionColor   RGB
	CaptionFormat  string

	CitationFrame  Rect
	CitationSize   measurement.Distance
	CitationFormat string
}

// DefaultPolicy is the only policy the service renders with.
var DefaultPolicy = LayoutPolicy{
	TitleLayoutName:    "Title Slide",
	TitleLayoutIndex:   0,
	ContentLayoutName:  "Title and Content",
	ContentLayoutIndex: 1,

	BulletLevel: 0,
	BulletSize:  18 * measurement.Point,

	ImageFrame: Rect{
		X: 5 * measurement.Inch,
		Y: 2 * measurement.Inch,
		W: 4 * measurement.Inch,
		H: 2.5 * measurement.Inch,
	},
	ImageFill:      RGB{R: 240, G: 240, B: 240},
	ImageLineWidth: 1.5 * measurement.Point,
	CaptionGap:     0.2 * measurement.Inch,
	CaptionHeight:  0.5 * measurement.Inch,
	CaptionSize:    10 * measurement.Point,
	CaptionColor:   RGB{R: 100, G: 100, B: 100},
	CaptionFormat:  "Suggested image: %s (CC license)",

	CitationFrame: Rect{
		X: 0.5 * measurement.Inch,
		Y: 6.5 * measurement.Inch,
		W: 9 * measurement.Inch,
		H: 0.5 * measurement.Inch,
	},
	CitationSize:   10 * measurement.Point,
	CitationFormat: "Source: %s",
}

// CaptionFrame sits CaptionGap below the image frame with the same left edge and width.
func (p LayoutPolicy) CaptionFrame() Rect {
	return Rect{
		X: p.ImageFrame.X,
		Y: p.ImageFrame.Y + p.ImageFrame.H + p.CaptionGap,
		W: p.ImageFrame.W,
		H: p.CaptionHeight,
	}
}
