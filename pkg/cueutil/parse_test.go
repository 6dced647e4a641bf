// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Lora: close({
	name:    string
	lora_r:  int
	enabled: bool
	note?:   string
})
`

type testLora struct {
	Name    string `json:"name"`
	LoraR   int    `json:"lora_r"`
	Enabled bool   `json:"enabled"`
	Note    string `json:"note,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid data decodes into struct", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "qlora"
lora_r: 32
enabled: true
note: "rank 32"
`)
		result, err := ParseAndDecode[testLora]([]byte(testSchema), data, "#Lora")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "qlora" || result.Value.LoraR != 32 || !result.Value.Enabled {
			t.Errorf("unexpected decoded value: %+v", *result.Value)
		}
		if !result.Unified.Exists() {
			t.Error("expected unified value to exist")
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "minimal"
lora_r: 8
enabled: false
`)
		result, err := ParseAndDecode[testLora]([]byte(testSchema), data, "#Lora")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Note != "" {
			t.Errorf("expected empty note, got %q", result.Value.Note)
		}
	})

	t.Run("type mismatch reports field path and filename", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "bad"
lora_r: "thirty-two"
enabled: true
`)
		_, err := ParseAndDecode[testLora]([]byte(testSchema), data, "#Lora", WithFilename("finetune.cue"))
		if err == nil {
			t.Fatal("expected error for type mismatch")
		}
		if !strings.Contains(err.Error(), "finetune.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
		if !strings.Contains(err.Error(), "lora_r") {
			t.Errorf("error should contain field path, got: %v", err)
		}
	})

	t.Run("closed schema rejects unknown field", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "x"
lora_r: 8
enabled: true
lora_dropout: 0.1
`)
		if _, err := ParseAndDecode[testLora]([]byte(testSchema), data, "#Lora"); err == nil {
			t.Fatal("expected error for unknown field")
		}
	})

	t.Run("syntax error is reported", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseAndDecode[testLora]([]byte(testSchema), []byte(`name: "x`), "#Lora"); err == nil {
			t.Fatal("expected error for invalid syntax")
		}
	})

	t.Run("missing definition is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testLora]([]byte(testSchema), []byte(`name: "x"`), "#Missing")
		if err == nil {
			t.Fatal("expected error for missing definition")
		}
		if !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("error should name the definition, got: %v", err)
		}
	})

	t.Run("file size limit enforced", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "` + strings.Repeat("a", 64) + `"`)
		_, err := ParseAndDecode[testLora]([]byte(testSchema), data, "#Lora", WithMaxFileSize(16))
		if err == nil {
			t.Fatal("expected error for oversized data")
		}
		if !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestParseAndDecodeString_NonConcreteMap(t *testing.T) {
	t.Parallel()

	schema := `
#Config: close({
	model?: close({
		lora_r?: int
		seed?:   int
	})
})
`
	result, err := ParseAndDecodeString[map[string]any](schema, []byte(`model: lora_r: 16`), "#Config", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}
	model, ok := (*result.Value)["model"].(map[string]any)
	if !ok {
		t.Fatalf("expected model to decode as a map, got %T", (*result.Value)["model"])
	}
	if _, ok := model["seed"]; ok {
		t.Error("unset optional field should not be decoded")
	}
	if _, ok := model["lora_r"]; !ok {
		t.Error("expected lora_r to be decoded")
	}
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	t.Run("decoded map matching the schema", func(t *testing.T) {
		t.Parallel()

		value := map[string]any{"name": "qlora", "lora_r": int64(16), "enabled": true}
		if err := ValidateValue([]byte(testSchema), value, "#Lora"); err != nil {
			t.Errorf("ValidateValue failed: %v", err)
		}
	})

	t.Run("wrong type is reported with the filename", func(t *testing.T) {
		t.Parallel()

		value := map[string]any{"name": "qlora", "lora_r": "sixteen", "enabled": true}
		err := ValidateValue([]byte(testSchema), value, "#Lora", WithFilename("finetune.toml"))
		if err == nil {
			t.Fatal("expected error for string lora_r")
		}
		if !strings.Contains(err.Error(), "finetune.toml") {
			t.Errorf("error should mention the file, got: %v", err)
		}
	})

	t.Run("closed definition rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		value := map[string]any{"name": "qlora", "lora_r": 8, "enabled": false, "dropout": 0.1}
		if err := ValidateValue([]byte(testSchema), value, "#Lora"); err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		if err := ValidateValue([]byte(testSchema), map[string]any{}, "#Missing"); err == nil {
			t.Error("expected error for missing schema definition")
		}
	})
}
