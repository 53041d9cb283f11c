package outbox

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
	"time"
)

const cloudEventContentType = "application/cloudevents+json"

var errPayloadNotJSON = errors.New("outbox: payload is not valid JSON")

// cloudEvent is the structured-mode CloudEvents 1.0 envelope.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	TraceParent     string          `json:"traceparent,omitempty"`
	RequestID       string          `json:"requestid,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// envelope wraps doc for the broker and returns the message headers.
func envelope(doc *EventDocument, source string) ([]byte, map[string]string, error) {
	if !json.Valid(doc.Payload) {
		return nil, nil, errPayloadNotJSON
	}
	body, err := json.Marshal(cloudEvent{
		SpecVersion:     "1.0",
		ID:              doc.ID,
		Type:            doc.Name + ".v1",
		Source:          source,
		Subject:         doc.Aggregate,
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		TraceParent:     doc.Headers["traceparent"],
		RequestID:       doc.Headers["request-id"],
		Data:            doc.Payload,
	})
	if err != nil {
		return nil, nil, err
	}
	headers := maps.Clone(doc.Headers)
	if headers == nil {
		headers = map[string]string{}
	}
	headers["content-type"] = cloudEventContentType
	return body, headers, nil
}

// topicFor maps "booking.payment_paid" to "<prefix>booking.events.v1".
func topicFor(prefix, eventName string) string {
	family, _, _ := strings.Cut(eventName, ".")
	return prefix + family + ".events.v1"
}
