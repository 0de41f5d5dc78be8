package devutil

import "testing"

func TestPick(t *testing.T) {
	in := struct {
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Email     string `json:"email"`
	}{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "jdoe@contoso.com",
	}

	out := Pick(in, "firstname", "lastname")

	if len(out) != 2 {
		t.Fatalf("Expected 2 keys, got %d: %v", len(out), out)
	}
	if out["firstname"] != "John" {
		t.Errorf("Expected firstname 'John', got %v", out["firstname"])
	}
	if _, ok := out["email"]; ok {
		t.Error("Expected email to be excluded")
	}
}

func TestPickUnknownKey(t *testing.T) {
	out := Pick(map[string]string{"a": "1"}, "missing")
	if len(out) != 0 {
		t.Errorf("Expected empty map for unknown key, got %v", out)
	}
}

func TestPickUnmarshalableValue(t *testing.T) {
	out := Pick(func() {}, "anything")
	if len(out) != 0 {
		t.Errorf("Expected empty map for unmarshalable input, got %v", out)
	}
}
