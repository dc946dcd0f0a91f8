package todo

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasklist-go/internal/utils"
)

const schemaURL = "tasks.schema.json"

// Schema is the JSON Schema every persisted task list must satisfy.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "tasks",
  "type": "array",
  "items": {"type": "string"}
}`

var compiledSchema = jsonschema.MustCompileString(schemaURL, Schema)

// ParseError reports a persisted value that is not a valid task list.
type ParseError struct {
	Key  string // storage key the value was read from
	Path string // location inside the value, e.g. "[2]"
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %q at %s: %s", e.Key, e.Path, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// decode parses raw into a task list. It returns a *ParseError if raw is not
// JSON or does not match Schema.
func decode(key, raw string) ([]string, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, schemaError(key, err)
	}

	var tasks []string
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}
	if tasks == nil {
		tasks = []string{}
	}
	return tasks, nil
}

// encode serializes tasks. A nil list encodes as "[]".
func encode(tasks []string) (string, error) {
	if tasks == nil {
		tasks = []string{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

// schemaError reduces a schema validation failure to its first leaf cause.
func schemaError(key string, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ParseError{Key: key, Err: err}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ParseError{
		Key:  key,
		Path: utils.JSONPointerToPath(ve.InstanceLocation),
		Err:  fmt.Errorf("%s", ve.Message),
	}
}
