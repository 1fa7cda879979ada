package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "notifications.schema.json")
	if err := writeSchema(out); err != nil {
		t.Fatalf("writeSchema: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, typ := range []string{"CARD_PLAYED", "UNIT_ATTACK_DECLARED", "BATTLE_RESOLVED", "CARD_STAT_MODIFIED"} {
		if _, ok := doc[typ]; !ok {
			t.Errorf("schema missing %s", typ)
		}
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
