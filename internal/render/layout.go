package render

import (
	"fmt"

	"baliance.com/gooxml/presentation"

	"slide-generator/internal/models"
)

// LayoutKind is the closed set of slide layout tags. Every unrecognized tag
// parses to LayoutOther, which renders with the content layout.
type LayoutKind int

const (
	LayoutContent LayoutKind = iota
	LayoutTitle
	LayoutOther
)

func ParseLayoutKind(tag string) LayoutKind {
	switch tag {
	case models.LayoutTagTitle:
		return LayoutTitle
	case models.LayoutTagContent:
		return LayoutContent
	default:
		return LayoutOther
	}
}

func (k LayoutKind) String() string {
	switch k {
	case LayoutTitle:
		return "title"
	case LayoutContent:
		return "content"
	default:
		return "other"
	}
}

// LayoutSelector maps a LayoutKind onto one of the two designated template layouts.
type LayoutSelector struct {
	policy LayoutPolicy
}

func NewLayoutSelector(policy LayoutPolicy) LayoutSelector {
	return LayoutSelector{policy: policy}
}

// Select returns the title layout for LayoutTitle and the content layout for
// everything else. Layouts are matched by name first, then by position.
func (s LayoutSelector) Select(kind LayoutKind, p *presentation.Presentation) (presentation.SlideLayout, error) {
	layouts := p.SlideLayouts()

	name, index := s.policy.ContentLayoutName, s.policy.ContentLayoutIndex
	if kind == LayoutTitle {
		name, index = s.policy.TitleLayoutName, s.policy.TitleLayoutIndex
	}

	for _, l := range layouts {
		if l.Name() == name {
			return l, nil
		}
	}
	if index >= 0 && index < len(layouts) {
		return layouts[index], nil
	}
	return presentation.SlideLayout{}, fmt.Errorf("template has no %q layout (found %d layouts)", name, len(layouts))
}
