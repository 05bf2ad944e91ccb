package render

import (
	"archive/zip"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"baliance.com/gooxml/presentation"

	apperrors "slide-generator/internal/common/errors"
)

//go:embed skeleton/*
var skeletonFS embed.FS

// package part -> embedded file
var skeletonParts = []struct {
	part string
	file string
}{
	{"[Content_Types].xml", "content_types.xml"},
	{"_rels/.rels", "root.rels"},
	{"docProps/core.xml", "core.xml"},
	{"docProps/app.xml", "app.xml"},
	{"ppt/presentation.xml", "presentation.xml"},
	{"ppt/_rels/presentation.xml.rels", "presentation.xml.rels"},
	{"ppt/slideMasters/slideMaster1.xml", "slideMaster1.xml"},
	{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slideMaster1.xml.rels"},
	{"ppt/slideLayouts/slideLayout1.xml", "slideLayout1.xml"},
	{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "slideLayout1.xml.rels"},
	{"ppt/slideLayouts/slideLayout2.xml", "slideLayout2.xml"},
	{"ppt/slideLayouts/_rels/slideLayout2.xml.rels", "slideLayout2.xml.rels"},
	{"ppt/theme/theme1.xml", "theme1.xml"},
}

// WriteDefaultTemplate writes the built-in two-layout template package to w.
func WriteDefaultTemplate(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, p := range skeletonParts {
		data, err := skeletonFS.ReadFile("skeleton/" + p.file)
		if err != nil {
			return fmt.Errorf("read template part %s: %w", p.file, err)
		}
		f, err := zw.Create(p.part)
		if err != nil {
			return fmt.Errorf("create template part %s: %w", p.part, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write template part %s: %w", p.part, err)
		}
	}
	return zw.Close()
}

// TemplateStore owns the on-disk template. The first caller that finds it
// missing writes the built-in one; concurrent callers never see a partial file.
type TemplateStore struct {
	path string
	mu   sync.Mutex
}

func NewTemplateStore(path string) *TemplateStore {
	return &TemplateStore{path: path}
}

func (t *TemplateStore) Path() string {
	return t.path
}

// Ensure creates the template if it does not exist yet. An existing file is
// never replaced.
func (t *TemplateStore) Ensure() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewTemplateUnavailableError(t.path, err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewTemplateUnavailableError(t.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".template-*.pptx")
	if err != nil {
		return apperrors.NewTemplateUnavailableError(t.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteDefaultTemplate(tmp); err != nil {
		tmp.Close()
		return apperrors.NewTemplateUnavailableError(t.path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewTemplateUnavailableError(t.path, err)
	}

	// Link fails if another process published first, which is fine.
	if err := os.Link(tmpName, t.path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		if _, statErr := os.Stat(t.path); statErr == nil {
			return nil
		}
		if err := os.Rename(tmpName, t.path); err != nil {
			return apperrors.NewTemplateUnavailableError(t.path, err)
		}
	}
	return nil
}

// Open ensures the template exists and loads a fresh in-memory copy of it.
func (t *TemplateStore) Open() (*presentation.Presentation, error) {
	if err := t.Ensure(); err != nil {
		return nil, err
	}
	p, err := presentation.Open(t.path)
	if err != nil {
		return nil, apperrors.NewTemplateUnavailableError(t.path, err)
	}
	return p, nil
}
