package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError reports one field that Normalize will coerce or ignore.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic
	Path     string `json:"path"`  // JSON-pointer-like location (e.g., "pocket1/x")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s at %s", e.Phase, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
}

func errorf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "error",
	}
}

func warningf(phase, path, msg string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    phase,
		Path:     path,
		Message:  fmt.Sprintf(msg, args...),
		Severity: "warning",
	}
}

// HasErrors reports whether any entry has error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// Validate checks a raw settings object against the settings JSON Schema.
// Schema violations are warnings: Normalize still produces a usable record,
// but the operator should know which values were replaced. Errors are
// reserved for failures of the validator itself.
func Validate(raw map[string]any) []*ValidationError {
	sch, err := compileSchema()
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "%v", err)}
	}

	// Round-trip through JSON so the validator sees float64/map[string]any
	// regardless of which decoder produced raw.
	data, err := json.Marshal(raw)
	if err != nil {
		return []*ValidationError{errorf("semantic", "", "marshal settings: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []*ValidationError{errorf("semantic", "", "unmarshal settings: %v", err)}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*sjsonschema.ValidationError)
		if !ok {
			return []*ValidationError{errorf("semantic", "", "%v", err)}
		}
		var errs []*ValidationError
		for _, cause := range flattenValidationErrors(ve) {
			errs = append(errs, warningf("semantic", strings.Join(cause.InstanceLocation, "/"), "%v", cause.ErrorKind))
		}
		return errs
	}
	return nil
}

func compileSchema() (*sjsonschema.Schema, error) {
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return nil, err
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("settings.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("settings.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
