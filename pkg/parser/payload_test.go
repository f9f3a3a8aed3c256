package parser

import (
	"testing"
)

func TestParseBareArray(t *testing.T) {
	records, err := Parse([]byte(`[{"email":"a@x.com"},{"email":"b@x.com"}]`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["email"] != "a@x.com" {
		t.Errorf("records[0][email] = %v", records[0]["email"])
	}
}

func TestParseEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"users envelope", `{"users":[{"primaryEmail":"a@x.com"}]}`, 1},
		{"members envelope", `{"members":[{"email":"a@x.com"},{"email":"b@x.com"}]}`, 2},
		{"licenses envelope", `{"licenses":[{"email":"a@x.com"}]}`, 1},
		{"unknown key with array value", `{"payload":[{"email":"a@x.com"}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestParseSkipsNonObjectElements(t *testing.T) {
	result, err := ParseWithWarnings([]byte(`[{"email":"a@x.com"}, 42, "junk", {"email":"b@x.com"}]`))
	if err != nil {
		t.Fatalf("ParseWithWarnings returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2", len(result.Records))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(result.Warnings))
	}
	if len(result.Warnings) > 0 && result.Warnings[0].Index != 1 {
		t.Errorf("first warning index = %d, want 1", result.Warnings[0].Index)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty payload", ""},
		{"invalid json", `{"users": [`},
		{"scalar payload", `42`},
		{"object without arrays", `{"count": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.payload)); err == nil {
				t.Error("Parse returned nil error")
			}
		})
	}
}

func TestParseBOMPrefixedPayload(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`[{"email":"a@x.com"}]`)...)
	records, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}
