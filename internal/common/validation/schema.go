package validation

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names, one per embedded file under schemas/.
const (
	SchemaCreatePresentation    = "create_presentation"
	SchemaConfigurePresentation = "configure_presentation"
	SchemaRenderPresentation    = "render_presentation"
	SchemaGenerateSlideContent  = "generate_slide_content"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// FirstMessage renders the first error the way the API reports it.
func (r *ValidationResult) FirstMessage() string {
	if r == nil || len(r.Errors) == 0 {
		return ""
	}
	e := r.Errors[0]
	if e.Field == "" || e.Field == "(root)" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (r *ValidationResult) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Message
	}
	return out
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			compileErr = err
			return
		}
		compiled = make(map[string]*gojsonschema.Schema, len(entries))
		for _, entry := range entries {
			raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
			if err != nil {
				compileErr = err
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", entry.Name(), err)
				return
			}
			compiled[strings.TrimSuffix(entry.Name(), ".json")] = s
		}
	})
	return compiled, compileErr
}

// ValidateJSON validates a raw JSON document against a named schema.
func ValidateJSON(schemaName string, document []byte) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewBytesLoader(document))
}

// ValidateInput validates decoded job variables against a named schema.
func ValidateInput(schemaName string, input map[string]interface{}) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewGoLoader(input))
}

func validate(schemaName string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	all, err := schemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", schemaName)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return nil, err
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	// gojsonschema reports errors in map order
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}
