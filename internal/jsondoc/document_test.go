package jsondoc

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"object", `{"message":"hi"}`, false},
		{"array", `[1,2,3]`, false},
		{"scalar", `"x"`, false},
		{"whitespace", " { \"a\" : 1 } ", false},
		{"empty", ``, true},
		{"truncated", `{"a":`, true},
		{"trailing garbage", `{"a":1}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidJSON) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidJSON", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if doc == nil {
				t.Fatal("Parse() returned nil document")
			}
		})
	}
}

func TestParse_CopiesInput(t *testing.T) {
	input := []byte(`{"k":"v"}`)
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	input[6] = 'X'

	if got, _ := doc.GetString("k"); got != "v" {
		t.Errorf("GetString() = %q after caller mutated input, want v", got)
	}
}

func TestGetString(t *testing.T) {
	doc, err := Parse([]byte(`{"message":"hello","count":3,"flag":true,"nested":{"x":"y"},"a.b":"dotted","nil":null}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"message", "hello", true},
		{"a.b", "dotted", true},
		{"count", "", false},
		{"flag", "", false},
		{"nested", "", false},
		{"nil", "", false},
		{"missing", "", false},
		{"nested.x", "", false},
	}

	for _, tt := range tests {
		got, ok := doc.GetString(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("GetString(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGetBool(t *testing.T) {
	doc, err := Parse([]byte(`{"on":true,"off":false,"str":"true"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if v, ok := doc.GetBool("on"); !ok || !v {
		t.Errorf("GetBool(on) = (%v, %v), want (true, true)", v, ok)
	}
	if v, ok := doc.GetBool("off"); !ok || v {
		t.Errorf("GetBool(off) = (%v, %v), want (false, true)", v, ok)
	}
	if _, ok := doc.GetBool("str"); ok {
		t.Error("GetBool(str) matched a string value")
	}
}

func TestSetString(t *testing.T) {
	doc := NewObject()

	if !doc.SetString("status", "online") {
		t.Fatal("SetString() on new object = false")
	}
	if !doc.SetString("status", "offline") {
		t.Fatal("SetString() replacing key = false")
	}
	if !doc.SetString("client.id", "edge-1") {
		t.Fatal("SetString() with dotted key = false")
	}

	want := `{"status":"offline","client.id":"edge-1"}`
	if got := string(doc.PrintUnformatted()); got != want {
		t.Errorf("PrintUnformatted() = %s, want %s", got, want)
	}
}

func TestSet_EmptyKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		set   func(*Document) bool
		want  string
	}{
		{
			name:  "new member",
			input: `{"a":1}`,
			set:   func(d *Document) bool { return d.SetString("", "e") },
			want:  `{"a":1,"":"e"}`,
		},
		{
			name:  "replaces existing",
			input: `{"":"old","b":true}`,
			set:   func(d *Document) bool { return d.SetString("", "new") },
			want:  `{"b":true,"":"new"}`,
		},
		{
			name:  "empty object",
			input: `{}`,
			set:   func(d *Document) bool { return d.SetBool("", false) },
			want:  `{"":false}`,
		},
		{
			name:  "escaped string",
			input: `{}`,
			set:   func(d *Document) bool { return d.SetString("", `a"b`) },
			want:  `{"":"a\"b"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !tt.set(doc) {
				t.Fatal("set with empty key = false")
			}
			if got := string(doc.PrintUnformatted()); got != tt.want {
				t.Errorf("PrintUnformatted() = %s, want %s", got, tt.want)
			}
		})
	}

	doc := NewObject()
	doc.SetString("", "e")
	if got, ok := doc.GetString(""); !ok || got != "e" {
		t.Errorf(`GetString("") = %q, %v, want "e", true`, got, ok)
	}
}

func TestSet_NonObject(t *testing.T) {
	doc, err := Parse([]byte(`[1,2]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.SetString("k", "v") {
		t.Error("SetString() on array = true, want false")
	}
}

func TestSetTypedValues(t *testing.T) {
	doc := NewObject()
	doc.SetBool("ready", true)
	doc.SetInt("uptime", 42)

	want := `{"ready":true,"uptime":42}`
	if got := string(doc.PrintUnformatted()); got != want {
		t.Errorf("PrintUnformatted() = %s, want %s", got, want)
	}
}

func TestPrintUnformatted(t *testing.T) {
	doc, err := Parse([]byte("{\n  \"a\" : [ 1, 2 ],\n  \"b\" : \"x y\"\n}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out := doc.PrintUnformatted()
	if string(out) != `{"a":[1,2],"b":"x y"}` {
		t.Errorf("PrintUnformatted() = %s", out)
	}

	// Caller owns the buffer.
	out[0] = '!'
	if again := doc.PrintUnformatted(); again[0] != '{' {
		t.Error("mutating returned buffer changed the document")
	}
}

func TestRelease(t *testing.T) {
	doc, err := Parse([]byte(`{"k":"v"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	doc.Release()
	doc.Release()

	if _, ok := doc.GetString("k"); ok {
		t.Error("GetString() on released document found a value")
	}
	if doc.SetString("k", "v") {
		t.Error("SetString() on released document = true")
	}
	if doc.PrintUnformatted() != nil {
		t.Error("PrintUnformatted() on released document returned data")
	}

	var nilDoc *Document
	nilDoc.Release()
	if _, ok := nilDoc.GetString("k"); ok {
		t.Error("GetString() on nil document found a value")
	}
}

func TestGetStrings(t *testing.T) {
	doc, err := Parse([]byte(`{"channels":["a","b"],"empty":[],"mixed":["a",1],"scalar":"a"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		key    string
		want   []string
		wantOK bool
	}{
		{"channels", []string{"a", "b"}, true},
		{"empty", []string{}, true},
		{"mixed", nil, false},
		{"scalar", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		got, ok := doc.GetStrings(tt.key)
		if ok != tt.wantOK {
			t.Errorf("GetStrings(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("GetStrings(%q) = %v, want %v", tt.key, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("GetStrings(%q)[%d] = %q, want %q", tt.key, i, got[i], tt.want[i])
			}
		}
	}
}

func TestObject(t *testing.T) {
	doc, err := Parse([]byte(`{"payload":{"channels":["network.changed"]},"list":[1]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	payload, ok := doc.Object("payload")
	if !ok {
		t.Fatal("Object(payload) ok = false, want true")
	}
	if got, _ := payload.GetStrings("channels"); len(got) != 1 || got[0] != "network.changed" {
		t.Errorf("payload channels = %v, want [network.changed]", got)
	}

	if _, ok := doc.Object("list"); ok {
		t.Error("Object(list) ok = true, want false for an array")
	}

	doc.Release()
	if _, ok := doc.Object("payload"); ok {
		t.Error("Object() on released document ok = true, want false")
	}
}
