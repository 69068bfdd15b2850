package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://cogsguard.local/schemas/"

// schemaFiles - схема для каждого типа сообщения.
var schemaFiles = map[string]string{
	TypeHello:   "hello.schema.json",
	TypeEpisode: "episode.schema.json",
	TypeObs:     "obs.schema.json",
	TypeAct:     "act.schema.json",
	TypeEnd:     "end.schema.json",
}

// ErrUnknownMessage - тип сообщения не входит в протокол.
var ErrUnknownMessage = errors.New("unknown message type")

// Validator проверяет кадры протокола по встроенным JSON-схемам.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator компилирует все схемы один раз.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	for _, file := range schemaFiles {
		data, err := schemaFS.ReadFile("schemas/" + file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		if err := c.AddResource(schemaBase+file, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", file, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(schemaFiles))}
	for typ, file := range schemaFiles {
		s, err := c.Compile(schemaBase + file)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		v.schemas[typ] = s
	}
	return v, nil
}

// Validate проверяет сырой кадр и возвращает его тип.
func (v *Validator) Validate(raw []byte) (string, error) {
	base, err := DecodeBase(raw)
	if err != nil {
		return "", err
	}
	s, ok := v.schemas[base.Type]
	if !ok {
		return base.Type, fmt.Errorf("%w: %q", ErrUnknownMessage, base.Type)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return base.Type, fmt.Errorf("decode %s: %w", base.Type, err)
	}
	if err := s.Validate(doc); err != nil {
		return base.Type, fmt.Errorf("invalid %s: %w", base.Type, err)
	}
	return base.Type, nil
}

// ValidateMessage проверяет исходящее сообщение перед отправкой.
func (v *Validator) ValidateMessage(msg interface{}) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	_, err = v.Validate(raw)
	return err
}
