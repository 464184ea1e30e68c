package record

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Field types understood by Schema, named after the form editors that render them
const (
	TypeText     = "Text"
	TypeNumber   = "Number"
	TypeDateTime = "DateTime"
	TypeDate     = "Date"

	DataTypeNumber   = "number"
	DataTypeDatetime = "datetime"
)

type Field struct {
	Type     string `yaml:"type"`
	DataType string `yaml:"dataType,omitempty"`
	Title    string `yaml:"title,omitempty"`
}

// Schema describes the columns of a remote model
type Schema struct {
	Name   string           `yaml:"name"`
	Fields map[string]Field `yaml:"fields"`

	datetimeOnce   sync.Once
	datetimeFields []string
}

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema YAML: %w", err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %q has no fields", s.Name)
	}
	for name, f := range s.Fields {
		switch f.Type {
		case TypeText, TypeNumber, TypeDateTime, TypeDate:
		default:
			return nil, fmt.Errorf("field %q has unknown type %q", name, f.Type)
		}
	}
	return &s, nil
}

// IsNumeric guesses from the schema whether attribute holds a number
func (s *Schema) IsNumeric(attribute string) bool {
	f, ok := s.Fields[attribute]
	if !ok {
		return false
	}
	return f.Type == TypeNumber || (f.Type == TypeText && f.DataType == DataTypeNumber)
}

// IsDatetime guesses from the schema whether attribute holds a date or datetime
func (s *Schema) IsDatetime(attribute string) bool {
	f, ok := s.Fields[attribute]
	if !ok {
		return false
	}
	switch f.Type {
	case TypeDateTime, TypeDate:
		return true
	case TypeText:
		return f.DataType == DataTypeDatetime
	default:
		return false
	}
}

// DatetimeFields lists datetime attributes in sorted order, computed once
func (s *Schema) DatetimeFields() []string {
	s.datetimeOnce.Do(func() {
		for name := range s.Fields {
			if s.IsDatetime(name) {
				s.datetimeFields = append(s.datetimeFields, name)
			}
		}
		sort.Strings(s.datetimeFields)
	})
	return s.datetimeFields
}
