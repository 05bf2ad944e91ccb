package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"slide-generator/internal/models"
)

const citationPrefix = "source:"

// MarkdownParser turns caller-supplied markdown into slides:
//
//	# / ## heading     starts a slide (the first # slide uses the title layout)
//	list items         bullet points, nested lists flattened
//	![alt](...)        image suggestion
//	Source: ...        citation, as a paragraph or blockquote
//	other paragraphs   bullet points
//
// Content before the first heading goes to a slide titled with the topic.
type MarkdownParser struct {
	md goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{md: goldmark.New()}
}

func (p *MarkdownParser) Parse(topic, markdown string) []models.Slide {
	src := []byte(markdown)
	doc := p.md.Parser().Parse(text.NewReader(src))

	b := &slideBuilder{topic: topic, src: src}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n)
	}
	return normalize(b.slides, topic, 0)
}

type slideBuilder struct {
	topic  string
	src    []byte
	slides []models.Slide
}

func (b *slideBuilder) current() *models.Slide {
	if len(b.slides) == 0 {
		b.slides = append(b.slides, models.Slide{Title: b.topic, Layout: models.LayoutTagTitle})
	}
	return &b.slides[len(b.slides)-1]
}

func (b *slideBuilder) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		title := b.inline(node)
		if node.Level > 2 {
			b.addPoint(title)
			return
		}
		layout := models.LayoutTagContent
		if node.Level == 1 && len(b.slides) == 0 {
			layout = models.LayoutTagTitle
		}
		b.slides = append(b.slides, models.Slide{Title: title, Layout: layout})

	case *ast.List:
		b.list(node)

	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c)
		}

	case *ast.Paragraph, *ast.TextBlock:
		b.paragraph(node)

	case *ast.ThematicBreak, *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		// not rendered on slides
	}
}

func (b *slideBuilder) list(list *ast.List) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				b.list(nested)
				continue
			}
			b.paragraph(c)
		}
	}
}

func (b *slideBuilder) paragraph(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if img, ok := c.(*ast.Image); ok {
			b.current().ImageSuggestion = b.imageSubject(img)
		}
	}

	line := b.inline(n)
	if line == "" {
		return
	}
	if len(line) >= len(citationPrefix) && strings.EqualFold(line[:len(citationPrefix)], citationPrefix) {
		b.current().Citation = strings.TrimSpace(line[len(citationPrefix):])
		return
	}
	b.addPoint(line)
}

func (b *slideBuilder) addPoint(p string) {
	if p == "" {
		return
	}
	s := b.current()
	s.Points = append(s.Points, p)
}

func (b *slideBuilder) imageSubject(img *ast.Image) string {
	if alt := b.inline(img); alt != "" {
		return alt
	}
	if len(img.Title) > 0 {
		return string(img.Title)
	}
	dest := string(img.Destination)
	if i := strings.LastIndex(dest, "/"); i >= 0 {
		dest = dest[i+1:]
	}
	return dest
}

// inline flattens the inline children of n to plain text. Images are skipped
// unless n is the image itself.
func (b *slideBuilder) inline(n ast.Node) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				buf.Write(v.Segment.Value(b.src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(v.Value)
			case *ast.AutoLink:
				buf.Write(v.Label(b.src))
			case *ast.Image:
				// handled by paragraph
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
