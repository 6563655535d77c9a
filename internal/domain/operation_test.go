package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func mustOperation(t *testing.T, raw string) Operation {
	t.Helper()
	op, err := ParseOperation([]byte(raw))
	if err != nil {
		t.Fatalf("ParseOperation(%s): %v", raw, err)
	}
	return op
}

func TestOperationResolveVideoURI(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "sdk shape",
			raw:  `{"name":"models/veo/operations/1","done":true,"response":{"generatedVideos":[{"video":{"uri":"https://files.example.com/v1/abc?alt=media"}}]}}`,
			want: "https://files.example.com/v1/abc?alt=media",
		},
		{
			name: "rest shape",
			raw:  `{"done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://files.example.com/rest"}}]}}}`,
			want: "https://files.example.com/rest",
		},
		{
			name: "first of many",
			raw:  `{"done":true,"response":{"generatedVideos":[{"video":{"uri":"https://a"}},{"video":{"uri":"https://b"}}]}}`,
			want: "https://a",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mustOperation(t, tc.raw).Resolve()
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOperationResolveProviderError(t *testing.T) {
	op := mustOperation(t, `{"done":true,"error":{"code":3,"message":"X"},"response":{"generatedVideos":[{"video":{"uri":"https://ignored"}}]}}`)
	_, err := op.Resolve()
	var failed *GenerationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected GenerationFailedError, got %T (%v)", err, err)
	}
	if !strings.Contains(err.Error(), "X") {
		t.Fatalf("error %q does not carry provider message", err.Error())
	}
}

func TestOperationResolveErrorWithoutMessage(t *testing.T) {
	op := mustOperation(t, `{"done":true,"error":{}}`)
	_, err := op.Resolve()
	if err == nil || !strings.Contains(err.Error(), "Unknown reason") {
		t.Fatalf("Resolve() error = %v, want Unknown reason", err)
	}
}

func TestOperationResolveMissingResult(t *testing.T) {
	for _, raw := range []string{
		`{"done":true}`,
		`{"done":true,"error":null,"response":{"generatedVideos":[]}}`,
		`{"done":true,"response":{"generatedVideos":[{"video":{}}]}}`,
	} {
		_, err := mustOperation(t, raw).Resolve()
		var missing *MissingResultError
		if !errors.As(err, &missing) {
			t.Fatalf("%s: expected MissingResultError, got %v", raw, err)
		}
	}
}

func TestOperationRoundTripsUnknownFields(t *testing.T) {
	raw := `{"name":"models/veo/operations/42","done":false,"metadata":{"@type":"x","progress":{"n":1}},"extra":[1,2,3]}`
	var op Operation
	if err := json.Unmarshal([]byte(raw), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if op.Done() {
		t.Fatalf("Done() = true, want false")
	}
	if op.Name() != "models/veo/operations/42" {
		t.Fatalf("Name() = %q", op.Name())
	}
	out, err := json.Marshal(struct {
		Operation Operation `json:"operation"`
	}{op})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"operation":` + raw + `}`
	if string(out) != want {
		t.Fatalf("marshal = %s, want %s", out, want)
	}
}

func TestOperationUnmarshalRejectsNonObject(t *testing.T) {
	var op Operation
	if err := json.Unmarshal([]byte(`"op"`), &op); err == nil {
		t.Fatalf("expected error for string operation")
	}
	if err := json.Unmarshal([]byte(`null`), &op); err != nil {
		t.Fatalf("null operation: %v", err)
	}
	if !op.IsZero() {
		t.Fatalf("null operation should be zero")
	}
}
