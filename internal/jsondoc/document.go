package jsondoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Document is a parsed JSON value.
type Document struct {
	raw      []byte
	released bool
}

// Parse validates data and returns a Document holding a copy of it.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidJSON, len(data))
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw}, nil
}

// NewObject returns an empty JSON object.
func NewObject() *Document {
	return &Document{raw: []byte("{}")}
}

// Release discards the document's contents.
func (d *Document) Release() {
	if d == nil {
		return
	}
	d.raw = nil
	d.released = true
}

// PrintUnformatted returns the document with insignificant whitespace
// removed. The returned slice belongs to the caller.
func (d *Document) PrintUnformatted() []byte {
	if !d.usable() {
		return nil
	}
	return pretty.Ugly(d.raw)
}

// PrintFormatted returns an indented rendering for logs and debugging.
func (d *Document) PrintFormatted() []byte {
	if !d.usable() {
		return nil
	}
	return pretty.Pretty(d.raw)
}

// GetString returns the value of key when it is present and a JSON string.
func (d *Document) GetString(key string) (string, bool) {
	if !d.usable() {
		return "", false
	}
	res := gjson.GetBytes(d.raw, escapeKey(key))
	if res.Type != gjson.String {
		return "", false
	}
	return res.Str, true
}

// GetBool returns the value of key when it is present and a JSON boolean.
func (d *Document) GetBool(key string) (bool, bool) {
	if !d.usable() {
		return false, false
	}
	res := gjson.GetBytes(d.raw, escapeKey(key))
	if !res.IsBool() {
		return false, false
	}
	return res.Bool(), true
}

// GetStrings returns the value of key when it is an array of strings.
// An array holding any other element type reports false.
func (d *Document) GetStrings(key string) ([]string, bool) {
	if !d.usable() {
		return nil, false
	}
	res := gjson.GetBytes(d.raw, escapeKey(key))
	if !res.IsArray() {
		return nil, false
	}
	elems := res.Array()
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Type != gjson.String {
			return nil, false
		}
		out = append(out, e.Str)
	}
	return out, true
}

// Object returns the member key as its own Document when it is an object.
func (d *Document) Object(key string) (*Document, bool) {
	if !d.usable() {
		return nil, false
	}
	res := gjson.GetBytes(d.raw, escapeKey(key))
	if !res.IsObject() {
		return nil, false
	}
	return &Document{raw: []byte(res.Raw)}, true
}

// SetString sets key to a string value, replacing any existing member.
// It reports false when the document is released or not an object.
func (d *Document) SetString(key, value string) bool {
	return d.set(key, value)
}

// SetBool sets key to a boolean value.
func (d *Document) SetBool(key string, value bool) bool {
	return d.set(key, value)
}

// SetInt sets key to an integer value.
func (d *Document) SetInt(key string, value int64) bool {
	return d.set(key, value)
}

func (d *Document) set(key string, value any) bool {
	if !d.usable() || !gjson.ParseBytes(d.raw).IsObject() {
		return false
	}
	if key == "" {
		return d.setEmptyKey(value)
	}
	out, err := sjson.SetBytes(d.raw, escapeKey(key), value)
	if err != nil {
		return false
	}
	d.raw = out
	return true
}

// setEmptyKey handles the "" member, which sjson cannot address as a path.
// The object is rebuilt with the member moved to the end.
func (d *Document) setEmptyKey(value any) bool {
	wrapped, err := sjson.SetBytes([]byte("{}"), "v", value)
	if err != nil {
		return false
	}

	var b bytes.Buffer
	b.Grow(len(d.raw) + len(wrapped))
	b.WriteByte('{')
	gjson.ParseBytes(d.raw).ForEach(func(k, v gjson.Result) bool {
		if k.Str == "" {
			return true
		}
		b.WriteString(k.Raw)
		b.WriteByte(':')
		b.WriteString(v.Raw)
		b.WriteByte(',')
		return true
	})
	b.WriteString(`"":`)
	b.WriteString(gjson.GetBytes(wrapped, "v").Raw)
	b.WriteByte('}')

	d.raw = b.Bytes()
	return true
}

func (d *Document) usable() bool {
	return d != nil && !d.released
}

// escapeKey makes key a single literal path component for gjson and sjson.
func escapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if !isPlainRune(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isPlainRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r > 0x7f
}
