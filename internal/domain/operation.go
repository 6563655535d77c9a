package domain

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

const unknownFailureReason = "Unknown reason"

// Operation is the provider's long-running job handle. Only the completion
// flag, the error and the first video uri are ever read; every other field is
// carried verbatim so the handle can be sent back to the provider unchanged.
type Operation struct {
	raw json.RawMessage
}

// ParseOperation wraps raw provider JSON. The payload must be a JSON object.
func ParseOperation(raw []byte) (Operation, error) {
	trimmed := bytes.TrimSpace(raw)
	if !gjson.ValidBytes(trimmed) || !gjson.ParseBytes(trimmed).IsObject() {
		return Operation{}, errors.New("operation is not a JSON object")
	}
	return Operation{raw: append(json.RawMessage(nil), trimmed...)}, nil
}

// IsZero reports whether no handle is present.
func (o Operation) IsZero() bool {
	return len(o.raw) == 0
}

// Raw returns the handle exactly as received.
func (o Operation) Raw() json.RawMessage {
	return o.raw
}

// Name returns the provider-assigned operation name, if any.
func (o Operation) Name() string {
	return o.get("name").String()
}

// Done reports whether the provider has finished the job.
func (o Operation) Done() bool {
	return o.get("done").Bool()
}

// Failure returns the provider's error message and whether an error is set.
func (o Operation) Failure() (string, bool) {
	v := o.get("error")
	if !v.Exists() || v.Type == gjson.Null {
		return "", false
	}
	msg := v.Get("message").String()
	if msg == "" {
		msg = unknownFailureReason
	}
	return msg, true
}

// VideoURI returns the first generated video's signed download link. Both the
// SDK shape and the raw REST shape of the response are understood.
func (o Operation) VideoURI() string {
	for _, path := range []string{
		"response.generatedVideos.0.video.uri",
		"response.generateVideoResponse.generatedSamples.0.video.uri",
	} {
		if uri := o.get(path).String(); uri != "" {
			return uri
		}
	}
	return ""
}

// Resolve turns a finished operation into its download link.
func (o Operation) Resolve() (string, error) {
	if msg, failed := o.Failure(); failed {
		return "", &GenerationFailedError{Reason: msg}
	}
	uri := o.VideoURI()
	if uri == "" {
		return "", &MissingResultError{}
	}
	return uri, nil
}

func (o Operation) get(path string) gjson.Result {
	if len(o.raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(o.raw, path)
}

func (o Operation) MarshalJSON() ([]byte, error) {
	if len(o.raw) == 0 {
		return []byte("null"), nil
	}
	return o.raw, nil
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		o.raw = nil
		return nil
	}
	op, err := ParseOperation(trimmed)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
