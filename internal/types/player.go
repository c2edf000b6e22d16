// Package types provides type definitions for structured data used throughout the roster-photos system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Catalog field names with meaning to the photo pipeline.
const (
	FieldID    = "id"
	FieldNick  = "nick"
	FieldPhoto = "photo"
)

// Player is one catalog record. Only id, nick and photo are interpreted; every other
// field is kept as raw JSON and written back unchanged, in its original position.
type Player struct {
	ID    string
	Nick  string
	Photo string

	fields []rawField
}

type rawField struct {
	key   string
	value json.RawMessage
}

// HasPhoto reports whether the record carries a photo path.
func (p *Player) HasPhoto() bool {
	return p.Photo != ""
}

// Field returns the raw JSON value of key, if present.
func (p *Player) Field(key string) (json.RawMessage, bool) {
	for _, f := range p.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Keys returns the record's keys in document order.
func (p *Player) Keys() []string {
	keys := make([]string, 0, len(p.fields)+1)
	hasPhoto := false
	for _, f := range p.fields {
		keys = append(keys, f.key)
		if f.key == FieldPhoto {
			hasPhoto = true
		}
	}
	if !hasPhoto && p.Photo != "" {
		keys = append(keys, FieldPhoto)
	}
	return keys
}

// UnmarshalJSON decodes a record, remembering key order and raw values.
func (p *Player) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("player record must be a JSON object")
	}

	*p = Player{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in player record", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}

		switch key {
		case FieldID:
			p.ID = decodeString(value)
		case FieldNick:
			p.Nick = decodeString(value)
		case FieldPhoto:
			p.Photo = decodeString(value)
		}

		// Duplicate keys keep the last value, as encoding/json does.
		replaced := false
		for i := range p.fields {
			if p.fields[i].key == key {
				p.fields[i].value = value
				replaced = true
				break
			}
		}
		if !replaced {
			p.fields = append(p.fields, rawField{key: key, value: value})
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the record with its original key order. id, nick and photo
// are written from the struct fields so in-memory updates are persisted.
func (p Player) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	wrote := 0
	write := func(key string, value []byte) error {
		if wrote > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		wrote++
		return nil
	}

	seen := map[string]bool{}
	for _, f := range p.fields {
		seen[f.key] = true
		value := []byte(f.value)

		var override *string
		switch f.key {
		case FieldID:
			override = &p.ID
		case FieldNick:
			override = &p.Nick
		case FieldPhoto:
			override = &p.Photo
		}
		if override != nil && *override != decodeString(f.value) {
			encoded, err := marshalNoEscape(*override)
			if err != nil {
				return nil, err
			}
			value = encoded
		}

		if err := write(f.key, value); err != nil {
			return nil, err
		}
	}

	for _, extra := range []struct {
		key   string
		value string
	}{
		{FieldID, p.ID},
		{FieldNick, p.Nick},
		{FieldPhoto, p.Photo},
	} {
		if seen[extra.key] || extra.value == "" {
			continue
		}
		encoded, err := marshalNoEscape(extra.value)
		if err != nil {
			return nil, err
		}
		if err := write(extra.key, encoded); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeString returns the string value of raw, or "" when raw is not a JSON string.
func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
