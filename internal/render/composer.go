package render

import (
	"errors"
	"fmt"
	"strings"

	"baliance.com/gooxml/presentation"
	"baliance.com/gooxml/schema/soo/dml"
	"baliance.com/gooxml/schema/soo/pml"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// Shape names written into cNvPr so rendered decorations can be found again.
const (
	ShapeNameImage    = "Image Placeholder"
	ShapeNameCaption  = "Image Caption"
	ShapeNameCitation = "Citation"
)

var errNoTitlePlaceholder = errors.New("layout has no title placeholder")

// Composer appends one styled slide per call.
type Composer struct {
	policy LayoutPolicy
}

func NewComposer(policy LayoutPolicy) Composer {
	return Composer{policy: policy}
}

// Compose instantiates layout into p and fills it from s. Failures are
// returned as *RenderError without a slide number; the caller adds it.
func (c Composer) Compose(p *presentation.Presentation, layout presentation.SlideLayout, s models.Slide, theme ResolvedTheme) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &apperrors.RenderError{Op: "compose", Err: fmt.Errorf("%v", r)}
		}
	}()

	slide, err := p.AddDefaultSlideWithLayout(layout)
	if err != nil {
		return &apperrors.RenderError{Op: "add slide", Err: err}
	}

	placeholders := slide.PlaceHolders()

	title, ok := titlePlaceholder(placeholders)
	if !ok {
		return &apperrors.RenderError{Op: "title", Err: errNoTitlePlaceholder}
	}
	c.writeTitle(title, s.Title, theme)

	if len(s.Points) > 0 && len(placeholders) > 1 {
		if body, ok := bodyPlaceholder(placeholders); ok {
			c.writeBullets(body, s.Points, theme)
		}
	}

	if s.ImageSuggestion != "" {
		c.drawImagePlaceholder(slide, s.ImageSuggestion, theme)
	}

	if s.Citation != "" {
		c.drawCitation(slide, s.Citation, theme)
	}

	return nil
}

// writeTitle puts each line of text in its own paragraph and styles the first one only.
func (c Composer) writeTitle(ph presentation.PlaceHolder, text string, theme ResolvedTheme) {
	ph.ClearAll()
	for i, line := range strings.Split(text, "\n") {
		run := ph.AddParagraph().AddRun()
		run.SetText(line)
		if i == 0 {
			run.Properties().SetSolidFill(theme.Primary.Color())
			run.Properties().SetFont(theme.Font)
		}
	}
}

func (c Composer) writeBullets(ph presentation.PlaceHolder, points []string, theme ResolvedTheme) {
	ph.ClearAll()
	for _, point := range points {
		para := ph.AddParagraph()
		para.Properties().SetLevel(c.policy.BulletLevel)
		run := para.AddRun()
		run.SetText(point)
		run.Properties().SetSize(c.policy.BulletSize)
		run.Properties().SetFont(theme.Font)
	}
}

func (c Composer) drawImagePlaceholder(slide presentation.Slide, suggestion string, theme ResolvedTheme) {
	frame := c.policy.ImageFrame
	box := slide.AddTextBox()
	box.X().NvSpPr.CNvPr.NameAttr = ShapeNameImage
	// a plain autoshape, not a text box
	box.X().NvSpPr.CNvSpPr.TxBoxAttr = nil
	props := box.Properties()
	props.SetGeometry(dml.ST_ShapeTypeRect)
	props.SetPosition(frame.X, frame.Y)
	props.SetSize(frame.W, frame.H)
	props.SetSolidFill(c.policy.ImageFill.Color())
	props.LineProperties().SetSolidFill(theme.Secondary.Color())
	props.LineProperties().SetWidth(c.policy.ImageLineWidth)

	capFrame := c.policy.CaptionFrame()
	caption := slide.AddTextBox()
	caption.X().NvSpPr.CNvPr.NameAttr = ShapeNameCaption
	caption.Properties().SetPosition(capFrame.X, capFrame.Y)
	caption.Properties().SetSize(capFrame.W, capFrame.H)
	run := caption.AddParagraph().AddRun()
	run.SetText(fmt.Sprintf(c.policy.CaptionFormat, suggestion))
	run.Properties().SetSize(c.policy.CaptionSize)
	run.Properties().SetSolidFill(c.policy.CaptionColor.Color())
}

func (c Composer) drawCitation(slide presentation.Slide, citation string, theme ResolvedTheme) {
	frame := c.policy.CitationFrame
	box := slide.AddTextBox()
	box.X().NvSpPr.CNvPr.NameAttr = ShapeNameCitation
	box.Properties().SetPosition(frame.X, frame.Y)
	box.Properties().SetSize(frame.W, frame.H)

	para := box.AddParagraph()
	para.Properties().SetAlign(dml.ST_TextAlignTypeR)
	run := para.AddRun()
	run.SetText(fmt.Sprintf(c.policy.CitationFormat, citation))
	run.Properties().SetSize(c.policy.CitationSize)
	run.Properties().SetFont(theme.Font)
	italic := true
	run.X().RPr.IAttr = &italic
}

func placeholderKind(ph presentation.PlaceHolder) (pml.ST_PlaceholderType, uint32, bool) {
	x := ph.X()
	if x == nil || x.NvSpPr == nil || x.NvSpPr.NvPr == nil || x.NvSpPr.NvPr.Ph == nil {
		return pml.ST_PlaceholderTypeUnset, 0, false
	}
	var idx uint32
	if x.NvSpPr.NvPr.Ph.IdxAttr != nil {
		idx = *x.NvSpPr.NvPr.Ph.IdxAttr
	}
	return x.NvSpPr.NvPr.Ph.TypeAttr, idx, true
}

func isTitleType(t pml.ST_PlaceholderType) bool {
	return t == pml.ST_PlaceholderTypeTitle || t == pml.ST_PlaceholderTypeCtrTitle
}

func titlePlaceholder(phs []presentation.PlaceHolder) (presentation.PlaceHolder, bool) {
	for _, ph := range phs {
		if t, _, ok := placeholderKind(ph); ok && isTitleType(t) {
			return ph, true
		}
	}
	return presentation.PlaceHolder{}, false
}

// bodyPlaceholder prefers the placeholder at idx 1 and falls back to the
// first non-title placeholder.
func bodyPlaceholder(phs []presentation.PlaceHolder) (presentation.PlaceHolder, bool) {
	var fallback *presentation.PlaceHolder
	for i := range phs {
		t, idx, ok := placeholderKind(phs[i])
		if !ok || isTitleType(t) {
			continue
		}
		if idx == 1 {
			return phs[i], true
		}
		if fallback == nil {
			fallback = &phs[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return presentation.PlaceHolder{}, false
}
