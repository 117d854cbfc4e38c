package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Field is a single named scalar attached to an event.
// Value holds a string, a json.Number or a bool.
type Field struct {
	Name  string
	Value interface{}
}

// ValueString renders the field value the way it appears in a notification
func (f Field) ValueString() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// EventFields is the free-form field bag of an event. JSON object key order
// is preserved through decode and encode, so notifications render fields in
// the order the caller sent them.
type EventFields []Field

// UnmarshalJSON decodes a JSON object into an ordered field list.
// Nested objects, arrays and nulls are rejected.
func (f *EventFields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("fields must be a JSON object")
	}

	fields := EventFields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("invalid field name")
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case string, json.Number, bool:
			fields = append(fields, Field{Name: key, Value: v})
		default:
			return errors.Errorf("field %q must be a string, number or boolean", key)
		}
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = fields
	return nil
}

// MarshalJSON encodes the fields back into a JSON object, preserving order
func (f EventFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the field names in order
func (f EventFields) Names() []string {
	names := make([]string, 0, len(f))
	for _, field := range f {
		names = append(names, field.Name)
	}
	return names
}
