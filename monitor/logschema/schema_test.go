package logschema

import "testing"

func TestValidate(t *testing.T) {
	err := Validate("execution_estimate", map[string]interface{}{
		"bookId":    "b1",
		"side":      "buy",
		"quantity":  10.0,
		"filled":    4.5,
		"value":     452.75,
		"remainder": 5.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = Validate("fetch_error", map[string]interface{}{
		"venue": "gemini",
	})
	if err == nil || err.Error() != "missing fields: outcome,error" {
		t.Fatalf("expected missing fields error, got %v", err)
	}
	if err := Validate("unknown_event", nil); err != nil {
		t.Fatalf("unknown events are not validated: %v", err)
	}
}

func TestKnownEvents(t *testing.T) {
	names := Known()
	if len(names) == 0 {
		t.Fatalf("expected non-empty schema list")
	}
	found := false
	for _, n := range names {
		if n == "book_merged" {
			found = true
		}
	}
	if !found {
		t.Fatalf("book_merged not found in schemas")
	}
}
