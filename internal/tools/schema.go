package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

const (
	TypeString  = "string"
	TypeBoolean = "boolean"

	schemaBaseURL = "https://browser-pilot.local/tools/"
)

type Property struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Schema is the parameter list of a tool. Property order is kept so the
// exported JSON schema is stable.
type Schema []Property

func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s))
	required := make([]string, 0, len(s))

	for _, p := range s {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Compile turns the exported JSON schema into a validator.
func (s Schema) Compile(name string) (*Validator, error) {
	raw, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("encode schema for %s: %w", name, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema for %s: %w", name, err)
	}

	url := schemaBaseURL + name + ".json"

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema for %s: %w", name, err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}

	names := make([]string, 0, len(s))
	for _, p := range s {
		names = append(names, p.Name)
	}

	return &Validator{schema: compiled, names: names}, nil
}

// MustCompile is Compile for the static tool definitions.
func (s Schema) MustCompile(name string) *Validator {
	v, err := s.Compile(name)
	if err != nil {
		panic(err)
	}

	return v
}

// Args are validated tool arguments.
type Args map[string]any

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

var errNotObject = errors.New("arguments must be a JSON object")

type Validator struct {
	schema *jsonschema.Schema
	names  []string
}

// Validate decodes raw as a JSON object and checks it against the schema.
// Blank input counts as an empty object, null values as absent and unknown
// properties are dropped.
func (v *Validator) Validate(raw string) (Args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, errNotObject
	}

	decoded, ok := inst.(map[string]any)
	if !ok {
		return nil, errNotObject
	}

	for name, value := range decoded {
		if value == nil {
			delete(decoded, name)
		}
	}

	if err := v.schema.Validate(decoded); err != nil {
		return nil, describe(err)
	}

	args := make(Args, len(v.names))
	for _, name := range v.names {
		if value, ok := decoded[name]; ok {
			args[name] = value
		}
	}

	return args, nil
}

// describe reduces a validation error to its first concrete cause, phrased
// for the model.
func describe(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		if len(k.Missing) > 0 {
			return fmt.Errorf("missing required field %q", k.Missing[0])
		}
	case *kind.Type:
		field := strings.Join(leaf.InstanceLocation, ".")
		return fmt.Errorf("field %q must be a %s", field, strings.Join(k.Want, " or "))
	}

	return verr
}
