// ABOUTME: Transport envelope carrying a message payload plus transport headers
// ABOUTME: Handed to the timed routing entry point, which unwraps the payload

package message

// Transport header keys set by the gateway's own transports.
const (
	// HeaderSource names where the message came from, e.g. "http 10.0.0.4:5122".
	HeaderSource = "source"
	// HeaderSubject is the authenticated caller, when there is one.
	HeaderSubject = "subject"
	// HeaderRequestID echoes a caller-supplied request id.
	HeaderRequestID = "request_id"
)

// Envelope wraps a payload with transport headers. The payload is normally a
// *Message but transports may hand over anything.
type Envelope struct {
	Headers map[string]string
	Body    any
}

// NewEnvelope wraps a message in an envelope with no headers.
func NewEnvelope(msg *Message) *Envelope {
	return &Envelope{Body: msg}
}

// Payload returns the wrapped body.
func (e *Envelope) Payload() any {
	if e == nil {
		return nil
	}
	return e.Body
}

// SetHeader sets a transport header, skipping empty values.
func (e *Envelope) SetHeader(key, value string) {
	if value == "" {
		return
	}
	if e.Headers == nil {
		e.Headers = make(map[string]string)
	}
	e.Headers[key] = value
}

// Header returns a transport header value.
func (e *Envelope) Header(key string) string {
	if e == nil {
		return ""
	}
	return e.Headers[key]
}
