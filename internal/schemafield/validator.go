package schemafield

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates data documents against the JSON Schema derived from a
// field tree. Compiled schemas are cached by content hash.
type Validator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator creates a new document validator
func NewValidator() *Validator {
	return &Validator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks a raw data document against the schema
func (v *Validator) Validate(schema *Field, document []byte) error {
	var doc any
	if err := json.Unmarshal(document, &doc); err != nil {
		return ValidationError{Err: fmt.Errorf("document is not valid JSON: %w", err)}
	}
	return v.ValidateValue(schema, doc)
}

// ValidateValue checks an already decoded document against the schema.
// Fields disabled by enableWhen are skipped.
func (v *Validator) ValidateValue(schema *Field, doc any) error {
	if schema == nil {
		return InvariantViolationError{Reason: "schema is nil"}
	}

	definition, err := schema.MarshalJSONSchema()
	if err != nil {
		return fmt.Errorf("failed to render json schema: %w", err)
	}

	compiled, err := v.compile(definition)
	if err != nil {
		return err
	}

	// values of disabled fields are kept on disk but not checked
	active, err := schema.ActiveDocument(doc)
	if err != nil {
		return ValidationError{Err: err}
	}
	if err := compiled.Validate(active); err != nil {
		return ValidationError{Err: err}
	}
	return nil
}

func (v *Validator) compile(definition []byte) (*jsonschema.Schema, error) {
	sum := sha256.Sum256(definition)
	key := hex.EncodeToString(sum[:])

	v.mu.RLock()
	if compiled, ok := v.compiled[key]; ok {
		v.mu.RUnlock()
		return compiled, nil
	}
	v.mu.RUnlock()

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()

	return compiled, nil
}

// CacheSize returns the number of compiled schemas held
func (v *Validator) CacheSize() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.compiled)
}

// ClearCache drops every compiled schema
func (v *Validator) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.compiled = make(map[string]*jsonschema.Schema)
}
