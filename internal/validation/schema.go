package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is one payload failure. Path is dotted ("pricing.model",
// "features.0"); an empty path points at the payload root.
type Issue struct {
	Path    string
	Message string
}

// PayloadError lists every failure found in a payload.
type PayloadError struct {
	Issues []Issue
}

func (e *PayloadError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "(root)"
		}
		parts = append(parts, path+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts payload issues from err. Errors that carry no structured
// issues are reported as a single root issue.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	return []Issue{{Message: err.Error()}}
}

// Schema is a compiled payload schema. The partial variant ignores
// "required" at every level so drafts can be checked before they are complete.
type Schema struct {
	full    *jsonschema.Schema
	partial *jsonschema.Schema
}

// Validate checks payload against the full schema.
func (s *Schema) Validate(payload map[string]any) error {
	if s == nil {
		return nil
	}
	return validateDocument(s.full, payload)
}

// ValidatePartial checks payload without enforcing required members.
func (s *Schema) ValidatePartial(payload map[string]any) error {
	if s == nil {
		return nil
	}
	return validateDocument(s.partial, payload)
}

var compiled sync.Map // canonical schema JSON -> *Schema

// Compile returns the compiled form of schema, reusing an earlier compilation
// of an identical document. A nil or empty schema compiles to nil.
func Compile(schema map[string]any) (*Schema, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	key := string(encoded)
	if cached, ok := compiled.Load(key); ok {
		return cached.(*Schema), nil
	}

	full, err := compileDocument(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	relaxed, err := json.Marshal(withoutRequired(schema))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	partial, err := compileDocument(relaxed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	out := &Schema{full: full, partial: partial}
	actual, _ := compiled.LoadOrStore(key, out)
	return actual.(*Schema), nil
}

// ValidateSchema reports whether schema compiles.
func ValidateSchema(schema map[string]any) error {
	_, err := Compile(schema)
	return err
}

// ValidatePayload compiles schema and checks payload against it.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	s, err := Compile(schema)
	if err != nil {
		return err
	}
	return s.Validate(payload)
}

// ValidatePartialPayload is ValidatePayload without required members.
func ValidatePartialPayload(schema map[string]any, payload map[string]any) error {
	s, err := Compile(schema)
	if err != nil {
		return err
	}
	return s.ValidatePartial(payload)
}

func compileDocument(encoded []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("payload.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("payload.json")
}

func validateDocument(schema *jsonschema.Schema, payload map[string]any) error {
	if schema == nil {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}
	document, err := decodeDocument(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	err = schema.Validate(document)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return &PayloadError{Issues: leafIssues(verr)}
}

// decodeDocument round-trips payload through JSON so Go-typed values (ints,
// typed slices, structs) reach the validator in decoded form.
func decodeDocument(payload map[string]any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return nil, err
	}
	return document, nil
}

func leafIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) > 0 {
			for _, cause := range node.Causes {
				walk(cause)
			}
			return
		}
		issue := Issue{Path: pointerToPath(node.InstanceLocation), Message: strings.TrimSpace(node.Message)}
		key := issue.Path + "\x00" + issue.Message
		if seen[key] {
			return
		}
		seen[key] = true
		issues = append(issues, issue)
	}
	walk(root)
	return issues
}

// pointerToPath turns a JSON pointer ("/pricing/model") into a dotted path.
func pointerToPath(pointer string) string {
	pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	pointer = strings.Trim(pointer, "/")
	if pointer == "" {
		return ""
	}
	segments := strings.Split(pointer, "/")
	for i, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segments[i] = strings.ReplaceAll(segment, "~0", "~")
	}
	return strings.Join(segments, ".")
}

func withoutRequired(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for key, value := range node {
		if key == "required" {
			if _, isList := value.([]any); isList {
				continue
			}
			if _, isList := value.([]string); isList {
				continue
			}
		}
		out[key] = relax(value)
	}
	return out
}

func relax(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return withoutRequired(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = relax(item)
		}
		return out
	default:
		return value
	}
}
