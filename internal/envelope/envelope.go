// Package envelope normalizes the heterogeneous response shapes returned by
// the ticket backend into a single three-way outcome.
//
// The backend is inconsistent: some endpoints wrap payloads in a status
// envelope {status, msg, data} where status==1 means success, some return the
// list or object of interest directly, and a few return plain text. Every
// response funnels through Normalize exactly once; callers consume the
// unwrapped payload and never re-inspect the envelope.
package envelope

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind discriminates the three possible normalization outcomes.
type Kind int

const (
	// KindOk means the response carried a usable payload.
	KindOk Kind = iota
	// KindDenied means the backend rejected the call for authorization reasons.
	KindDenied
	// KindFailed means a transport-level or business-level failure.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindDenied:
		return "denied"
	case KindFailed:
		return "failed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// deniedMessage is the fixed reason attached to 403 responses.
const deniedMessage = "permission denied"

// Outcome is the normalized result of one backend response.
type Outcome struct {
	Kind    Kind
	Code    int          // transport status code
	Message string       // failure or denial reason, empty on success
	Payload gjson.Result // unwrapped payload, valid only when Kind is KindOk
	Raw     string       // original body text for non-JSON responses

	// Enveloped records that the payload was unwrapped from a status
	// envelope, as opposed to a bare array/object passed through for
	// compatibility. Operations that require an explicit acknowledgment
	// (reservations) check it; plain lookups do not care.
	Enveloped bool
}

// OK reports whether the outcome carries a usable payload.
func (o Outcome) OK() bool {
	return o.Kind == KindOk
}

// Array projects the payload as a sequence. Non-array payloads and failed
// outcomes degrade to an empty slice.
func (o Outcome) Array() []gjson.Result {
	if !o.OK() || !o.Payload.IsArray() {
		return nil
	}
	return o.Payload.Array()
}

// Field reads a path from the payload. Failed outcomes and missing paths
// yield a zero gjson.Result, which stringifies to "".
func (o Outcome) Field(path string) gjson.Result {
	if !o.OK() {
		return gjson.Result{}
	}
	return o.Payload.Get(path)
}

// Err converts a non-OK outcome into an error carrying its message.
// Returns nil for OK outcomes.
func (o Outcome) Err() error {
	switch o.Kind {
	case KindOk:
		return nil
	case KindDenied:
		return fmt.Errorf("denied: %s", o.Message)
	default:
		if o.Message == "" {
			return fmt.Errorf("request failed with status %d", o.Code)
		}
		return fmt.Errorf("request failed: %s", o.Message)
	}
}

// Ok builds a successful outcome around an already-parsed payload.
func Ok(payload gjson.Result) Outcome {
	return Outcome{Kind: KindOk, Code: 200, Payload: payload}
}

// Failed builds a failure outcome with a transport code and message.
func Failed(code int, message string) Outcome {
	return Outcome{Kind: KindFailed, Code: code, Message: message}
}

// Denied builds an authorization-denied outcome.
func Denied(code int) Outcome {
	return Outcome{Kind: KindDenied, Code: code, Message: deniedMessage}
}

// emptySequence backs the synthetic payload handed to callers when the body
// is not JSON at all. Callers that expect a sequence see an empty one.
var emptySequence = gjson.Parse("[]")

// Normalize maps a raw response to exactly one of the three outcomes.
// It is total: every (statusCode, body) pair produces an outcome, and it is
// idempotent in the sense that the returned payload is already unwrapped.
//
//   - non-200 status codes fail with the code and body text; 403 maps to
//     KindDenied with a fixed reason
//   - a JSON object carrying a "status" key is a status envelope: status==1
//     unwraps "data" and marks the outcome Enveloped, anything else fails
//     with the envelope's "msg"
//   - a bare array or a bare object without "status" passes through unchanged
//   - non-JSON bodies succeed with the raw text preserved and an empty
//     sequence as payload
func Normalize(statusCode int, body []byte) Outcome {
	if statusCode == 403 {
		return Denied(statusCode)
	}
	if statusCode != 200 {
		return Failed(statusCode, string(body))
	}

	if !gjson.ValidBytes(body) {
		out := Ok(emptySequence)
		out.Raw = string(body)
		return out
	}

	parsed := gjson.ParseBytes(body)
	if parsed.IsObject() {
		if status := parsed.Get("status"); status.Exists() {
			if status.Int() == 1 {
				out := Ok(parsed.Get("data"))
				out.Enveloped = true
				return out
			}
			return Failed(statusCode, parsed.Get("msg").String())
		}
		return Ok(parsed)
	}
	if parsed.IsArray() {
		return Ok(parsed)
	}

	// Scalar JSON (a bare string or number) is not a shape any endpoint
	// documents; hand it through as the payload.
	return Ok(parsed)
}
