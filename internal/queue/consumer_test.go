package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(ConnectionChangedEvent{
		Kind:         "photo.added",
		EntityID:     "p1",
		ConnectionID: "c1",
		ClientName:   "Test",
		Status:       "Active",
		OccurredAt:   "2025-03-01T10:00:00Z",
		Total:        2,
	})
	want := `[2025-03-01T10:00:00Z] photo.added | id=p1 | connection_id=c1 | client="Test" | status=Active | total=2` + "\n"
	if line != want {
		t.Fatalf("expected %q, got %q", want, line)
	}
}

func TestHandleMessageAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body := []byte(`{"kind":"connection.added","entity_id":"1","occurred_at":"t","total_connections":1}`)
	if err := HandleMessage(dir, body); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := HandleMessage(dir, body); err != nil {
		t.Fatalf("second: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ChangeLogFile))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "connection.added"); n != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", n, data)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	if err := HandleMessage(dir, []byte("{")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := HandleMessage(dir, []byte(`{}`)); err == nil {
		t.Fatal("expected error for event without kind")
	}
}
