package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"baliance.com/gooxml/presentation"
	"baliance.com/gooxml/schema/soo/dml"
	"baliance.com/gooxml/schema/soo/pml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestAssembler(t *testing.T) (*Assembler, string) {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	return NewAssembler(NewTemplateStore(filepath.Join(dir, "templates", "default.pptx")), out), out
}

func sampleDeck() *models.Deck {
	return &models.Deck{
		ID:    "3b5e6f0a-aaaa-bbbb-cccc-000000000001",
		Topic: "Solar Power",
		Slides: []models.Slide{
			{SlideNumber: 1, Layout: "title", Title: "Solar Power\nAn Overview", Points: []string{"Prepared for the board"}},
			{
				SlideNumber:     2,
				Layout:          "content",
				Title:           "How Panels Work",
				Points:          []string{"Photons excite electrons", "Inverters convert DC to AC"},
				ImageSuggestion: "solar panel diagram",
				Citation:        "NREL 2023",
			},
			{SlideNumber: 3, Layout: "comparison", Title: "Costs", Points: nil},
		},
	}
}

func slideShapes(s presentation.Slide) []*pml.CT_Shape {
	var out []*pml.CT_Shape
	for _, c := range s.X().CSld.SpTree.Choice {
		out = append(out, c.Sp...)
	}
	return out
}

func shapeNamed(s presentation.Slide, name string) *pml.CT_Shape {
	for _, sp := range slideShapes(s) {
		if sp.NvSpPr != nil && sp.NvSpPr.CNvPr != nil && sp.NvSpPr.CNvPr.NameAttr == name {
			return sp
		}
	}
	return nil
}

func placeholderOfType(s presentation.Slide, types ...pml.ST_PlaceholderType) *pml.CT_Shape {
	for _, sp := range slideShapes(s) {
		if sp.NvSpPr == nil || sp.NvSpPr.NvPr == nil || sp.NvSpPr.NvPr.Ph == nil {
			continue
		}
		for _, typ := range types {
			if sp.NvSpPr.NvPr.Ph.TypeAttr == typ {
				return sp
			}
		}
	}
	return nil
}

func bodyOf(s presentation.Slide) *pml.CT_Shape {
	for _, sp := range slideShapes(s) {
		if sp.NvSpPr == nil || sp.NvSpPr.NvPr == nil || sp.NvSpPr.NvPr.Ph == nil {
			continue
		}
		ph := sp.NvSpPr.NvPr.Ph
		if ph.IdxAttr != nil && *ph.IdxAttr == 1 {
			return sp
		}
	}
	return nil
}

func firstRun(p *dml.CT_TextParagraph) *dml.CT_RegularTextRun {
	for _, r := range p.EG_TextRun {
		if r.R != nil {
			return r.R
		}
	}
	return nil
}

func paragraphTexts(sp *pml.CT_Shape) []string {
	var out []string
	if sp == nil || sp.TxBody == nil {
		return out
	}
	for _, p := range sp.TxBody.P {
		var b strings.Builder
		for _, r := range p.EG_TextRun {
			if r.R != nil {
				b.WriteString(r.R.T)
			}
		}
		out = append(out, b.String())
	}
	return out
}

func fillHex(fill *dml.CT_SolidColorFillProperties) string {
	if fill == nil || fill.SrgbClr == nil {
		return ""
	}
	return strings.ToUpper(fill.SrgbClr.ValAttr)
}

const emuPerInch = 914400

// frame is a shape's offset and extent in EMU.
type frame struct {
	X, Y, W, H int64
}

func frameOf(sp *pml.CT_Shape) frame {
	if sp == nil || sp.SpPr == nil || sp.SpPr.Xfrm == nil {
		return frame{}
	}
	var f frame
	if off := sp.SpPr.Xfrm.Off; off != nil {
		if off.XAttr.ST_CoordinateUnqualified != nil {
			f.X = *off.XAttr.ST_CoordinateUnqualified
		}
		if off.YAttr.ST_CoordinateUnqualified != nil {
			f.Y = *off.YAttr.ST_CoordinateUnqualified
		}
	}
	if ext := sp.SpPr.Xfrm.Ext; ext != nil {
		f.W = ext.CxAttr
		f.H = ext.CyAttr
	}
	return f
}

func assertFrameInches(t *testing.T, sp *pml.CT_Shape, x, y, w, h float64) {
	t.Helper()
	require.NotNil(t, sp)
	f := frameOf(sp)
	assert.InDelta(t, x*emuPerInch, float64(f.X), 1, "x")
	assert.InDelta(t, y*emuPerInch, float64(f.Y), 1, "y")
	assert.InDelta(t, w*emuPerInch, float64(f.W), 1, "width")
	assert.InDelta(t, h*emuPerInch, float64(f.H), 1, "height")
}

// shapeSnapshot is the content-relevant part of a rendered shape.
type shapeSnapshot struct {
	Name  string
	Texts []string
	Frame frame
}

func snapshot(p *presentation.Presentation) [][]shapeSnapshot {
	var out [][]shapeSnapshot
	for _, slide := range p.Slides() {
		var shapes []shapeSnapshot
		for _, sp := range slideShapes(slide) {
			shapes = append(shapes, shapeSnapshot{
				Name:  sp.NvSpPr.CNvPr.NameAttr,
				Texts: paragraphTexts(sp),
				Frame: frameOf(sp),
			})
		}
		out = append(out, shapes)
	}
	return out
}

func renderAndOpen(t *testing.T, a *Assembler, d *models.Deck) (string, *presentation.Presentation) {
	t.Helper()
	path, err := a.Render(d)
	require.NoError(t, err)
	p, err := presentation.Open(path)
	require.NoError(t, err)
	return path, p
}

// ==========================
// Document Assembly
// ==========================

func TestAssembler_Render_WritesOneSlidePerDeckSlide(t *testing.T) {
	a, out := newTestAssembler(t)
	d := sampleDeck()

	path, p := renderAndOpen(t, a, d)

	assert.Equal(t, filepath.Join(out, d.ID+".pptx"), path)
	assert.Len(t, p.Slides(), len(d.Slides))
}

func TestAssembler_Render_EmptyDeck(t *testing.T) {
	a, _ := newTestAssembler(t)
	d := &models.Deck{ID: "empty-deck"}

	_, p := renderAndOpen(t, a, d)
	assert.Empty(t, p.Slides())
}

func TestAssembler_Render_Overwrites(t *testing.T) {
	a, out := newTestAssembler(t)
	d := sampleDeck()

	_, err := a.Render(d)
	require.NoError(t, err)

	d.Slides = d.Slides[:1]
	_, p := renderAndOpen(t, a, d)
	assert.Len(t, p.Slides(), 1)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the published file should remain")
}

func TestAssembler_Render_MalformedThemeWritesNothing(t *testing.T) {
	a, out := newTestAssembler(t)
	d := sampleDeck()
	d.Theme.PrimaryColor = strPtr("blue")

	_, err := a.Render(d)

	var colorErr *apperrors.MalformedColorError
	require.ErrorAs(t, err, &colorErr)
	_, statErr := os.Stat(filepath.Join(out, d.ID+".pptx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAssembler_OutputPath_RejectsTraversal(t *testing.T) {
	a, _ := newTestAssembler(t)

	for _, id := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := a.OutputPath(id)
		assert.Error(t, err, id)
	}
}

func TestAssembler_Render_TemplateWithoutLayouts(t *testing.T) {
	dir := t.TempDir()
	policy := DefaultPolicy
	policy.TitleLayoutName = "Nope"
	policy.TitleLayoutIndex = 9
	a := NewAssemblerWithPolicy(NewTemplateStore(filepath.Join(dir, "t.pptx")), dir, policy)

	_, err := a.Render(sampleDeck())

	var renderErr *apperrors.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, 1, renderErr.Slide)
	assert.Equal(t, apperrors.ErrCodeRenderFailed, apperrors.Classify(err).Code)
}

// ==========================
// Slide Composition
// ==========================

func TestComposer_TitleStylesFirstParagraphOnly(t *testing.T) {
	a, _ := newTestAssembler(t)
	_, p := renderAndOpen(t, a, sampleDeck())

	title := placeholderOfType(p.Slides()[0], pml.ST_PlaceholderTypeCtrTitle, pml.ST_PlaceholderTypeTitle)
	require.NotNil(t, title)
	assert.Equal(t, []string{"Solar Power", "An Overview"}, paragraphTexts(title))

	first := firstRun(title.TxBody.P[0])
	require.NotNil(t, first)
	require.NotNil(t, first.RPr)
	assert.Equal(t, "2A5CAA", fillHex(first.RPr.SolidFill))
	require.NotNil(t, first.RPr.Latin)
	assert.Equal(t, "Calibri", first.RPr.Latin.TypefaceAttr)

	second := firstRun(title.TxBody.P[1])
	require.NotNil(t, second)
	if second.RPr != nil {
		assert.Nil(t, second.RPr.SolidFill)
		assert.Nil(t, second.RPr.Latin)
	}
}

func TestComposer_BulletsUseThemeFont(t *testing.T) {
	a, _ := newTestAssembler(t)
	d := sampleDeck()
	d.Theme.Font = strPtr("Georgia")
	_, p := renderAndOpen(t, a, d)

	body := bodyOf(p.Slides()[1])
	require.NotNil(t, body)
	assert.Equal(t, d.Slides[1].Points, paragraphTexts(body))

	for _, para := range body.TxBody.P {
		require.NotNil(t, para.PPr)
		require.NotNil(t, para.PPr.LvlAttr)
		assert.Equal(t, int32(0), *para.PPr.LvlAttr)

		run := firstRun(para)
		require.NotNil(t, run)
		require.NotNil(t, run.RPr.SzAttr)
		assert.Equal(t, int32(1800), *run.RPr.SzAttr)
		assert.Equal(t, "Georgia", run.RPr.Latin.TypefaceAttr)
	}
}

func TestComposer_TitleSlidePointsGoToSubtitle(t *testing.T) {
	a, _ := newTestAssembler(t)
	_, p := renderAndOpen(t, a, sampleDeck())

	sub := bodyOf(p.Slides()[0])
	require.NotNil(t, sub)
	assert.Equal(t, []string{"Prepared for the board"}, paragraphTexts(sub))
}

func TestComposer_NoPointsLeavesBodyUntouched(t *testing.T) {
	a, _ := newTestAssembler(t)
	_, p := renderAndOpen(t, a, sampleDeck())

	body := bodyOf(p.Slides()[2])
	require.NotNil(t, body)
	for _, text := range paragraphTexts(body) {
		assert.NotContains(t, text, "Costs")
	}
	assert.Nil(t, shapeNamed(p.Slides()[2], ShapeNameImage))
	assert.Nil(t, shapeNamed(p.Slides()[2], ShapeNameCitation))
}

func TestComposer_ImagePlaceholderAndCaption(t *testing.T) {
	a, _ := newTestAssembler(t)
	d := sampleDeck()
	d.Theme.SecondaryColor = strPtr("#00FF00")
	_, p := renderAndOpen(t, a, d)
	slide := p.Slides()[1]

	rect := shapeNamed(slide, ShapeNameImage)
	require.NotNil(t, rect)
	require.NotNil(t, rect.SpPr)
	assert.Equal(t, "F0F0F0", fillHex(rect.SpPr.SolidFill))
	require.NotNil(t, rect.SpPr.Ln)
	assert.Equal(t, "00FF00", fillHex(rect.SpPr.Ln.SolidFill))

	require.NotNil(t, rect.NvSpPr.CNvSpPr)
	assert.Nil(t, rect.NvSpPr.CNvSpPr.TxBoxAttr, "image placeholder must be an autoshape")
	require.NotNil(t, rect.SpPr.PrstGeom)
	assert.Equal(t, dml.ST_ShapeTypeRect, rect.SpPr.PrstGeom.PrstAttr)

	caption := shapeNamed(slide, ShapeNameCaption)
	require.NotNil(t, caption)
	require.NotNil(t, caption.NvSpPr.CNvSpPr.TxBoxAttr)
	assert.True(t, *caption.NvSpPr.CNvSpPr.TxBoxAttr)
	assert.Equal(t, []string{"Suggested image: solar panel diagram (CC license)"}, paragraphTexts(caption))

	var textBoxes int
	for _, sp := range slideShapes(slide) {
		if sp.NvSpPr.CNvSpPr != nil && sp.NvSpPr.CNvSpPr.TxBoxAttr != nil && *sp.NvSpPr.CNvSpPr.TxBoxAttr {
			textBoxes++
		}
	}
	assert.Equal(t, 2, textBoxes, "caption and citation are the only text boxes")
	run := firstRun(caption.TxBody.P[0])
	require.NotNil(t, run.RPr.SzAttr)
	assert.Equal(t, int32(1000), *run.RPr.SzAttr)
	assert.Equal(t, "646464", fillHex(run.RPr.SolidFill))
}

func TestComposer_CitationFooter(t *testing.T) {
	a, _ := newTestAssembler(t)
	_, p := renderAndOpen(t, a, sampleDeck())

	footer := shapeNamed(p.Slides()[1], ShapeNameCitation)
	require.NotNil(t, footer)
	assert.Equal(t, []string{"Source: NREL 2023"}, paragraphTexts(footer))

	para := footer.TxBody.P[0]
	require.NotNil(t, para.PPr)
	assert.Equal(t, dml.ST_TextAlignTypeR, para.PPr.AlgnAttr)

	run := firstRun(para)
	require.NotNil(t, run.RPr.IAttr)
	assert.True(t, *run.RPr.IAttr)
	assert.Equal(t, int32(1000), *run.RPr.SzAttr)
	assert.Equal(t, "Calibri", run.RPr.Latin.TypefaceAttr)
}

func TestComposer_DecorationGeometry(t *testing.T) {
	a, _ := newTestAssembler(t)
	_, p := renderAndOpen(t, a, sampleDeck())
	slide := p.Slides()[1]

	rect := shapeNamed(slide, ShapeNameImage)
	assertFrameInches(t, rect, 5, 2, 4, 2.5)
	require.NotNil(t, rect.SpPr.Ln)
	require.NotNil(t, rect.SpPr.Ln.WAttr)
	assert.InDelta(t, 19050, float64(*rect.SpPr.Ln.WAttr), 1, "1.5pt outline")

	assertFrameInches(t, shapeNamed(slide, ShapeNameCaption), 5, 4.7, 4, 0.5)
	assertFrameInches(t, shapeNamed(slide, ShapeNameCitation), 0.5, 6.5, 9, 0.5)
}

func TestAssembler_Render_Idempotent(t *testing.T) {
	a, _ := newTestAssembler(t)
	d := sampleDeck()

	_, first := renderAndOpen(t, a, d)
	before := snapshot(first)

	_, second := renderAndOpen(t, a, d)
	after := snapshot(second)

	require.Len(t, before, len(d.Slides))
	assert.Equal(t, before, after)
}
