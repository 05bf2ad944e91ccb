package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"baliance.com/gooxml/presentation"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

// Assembler turns a deck into a .pptx file under the output directory.
type Assembler struct {
	templates *TemplateStore
	outputDir string
	selector  LayoutSelector
	composer  Composer
}

func NewAssembler(templates *TemplateStore, outputDir string) *Assembler {
	return NewAssemblerWithPolicy(templates, outputDir, DefaultPolicy)
}

func NewAssemblerWithPolicy(templates *TemplateStore, outputDir string, policy LayoutPolicy) *Assembler {
	return &Assembler{
		templates: templates,
		outputDir: outputDir,
		selector:  NewLayoutSelector(policy),
		composer:  NewComposer(policy),
	}
}

// OutputPath is where the deck with the given id is rendered to.
func (a *Assembler) OutputPath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return "", apperrors.NewInvalidInputError("Invalid presentation id", id)
	}
	return filepath.Join(a.outputDir, id+".pptx"), nil
}

// Render builds one slide per deck slide, in order, and writes the result to
// {outputDir}/{id}.pptx, replacing any earlier render of the same deck.
func (a *Assembler) Render(d *models.Deck) (string, error) {
	path, err := a.OutputPath(d.ID)
	if err != nil {
		return "", err
	}

	theme, err := ResolveTheme(d.Theme)
	if err != nil {
		return "", err
	}

	p, err := a.Build(d.Slides, theme)
	if err != nil {
		return "", err
	}

	if err := a.write(p, path); err != nil {
		return "", err
	}
	return path, nil
}

// Build composes slides onto a fresh copy of the template without saving.
func (a *Assembler) Build(slides []models.Slide, theme ResolvedTheme) (*presentation.Presentation, error) {
	p, err := a.templates.Open()
	if err != nil {
		return nil, err
	}

	for i, s := range slides {
		layout, err := a.selector.Select(ParseLayoutKind(s.Layout), p)
		if err != nil {
			return nil, &apperrors.RenderError{Slide: i + 1, Op: "select layout", Err: err}
		}
		if err := a.composer.Compose(p, layout, s, theme); err != nil {
			var re *apperrors.RenderError
			if errors.As(err, &re) {
				re.Slide = i + 1
				return nil, re
			}
			return nil, &apperrors.RenderError{Slide: i + 1, Op: "compose", Err: err}
		}
	}
	return p, nil
}

func (a *Assembler) write(p *presentation.Presentation, path string) error {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return &apperrors.RenderError{Op: "prepare output", Err: err}
	}

	tmp, err := os.CreateTemp(a.outputDir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return &apperrors.RenderError{Op: "prepare output", Err: err}
	}
	tmpName := tmp.Name()

	if err := p.Save(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &apperrors.RenderError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &apperrors.RenderError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &apperrors.RenderError{Op: "save", Err: fmt.Errorf("publish %s: %w", path, err)}
	}
	return nil
}
