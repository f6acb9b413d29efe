// Package sse reads Server-Sent Events from a streamed response.
//
//	resp, err := client.Get(ctx, "/events", httpclient.WithResponseType(core.ResponseStream))
//	r, err := sse.FromResponse(resp)
//	defer r.Close()
//	for {
//	    ev, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	}
package sse

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elnormous/contenttype"

	"github.com/kbukum/anyhttp/core"
)

const maxEventSize = 1 << 20

var eventStreamMediaType = contenttype.NewMediaType("text/event-stream")

// ErrNotEventStream is returned by FromResponse for other content types.
var ErrNotEventStream = errors.New("sse: response is not text/event-stream")

// ErrNotStream is returned by FromResponse when the body was already decoded.
var ErrNotStream = errors.New("sse: response body is not a stream")

// Event represents a single server-sent event.
type Event struct {
	// Event is the event type. Empty for data-only events.
	Event string
	// Data is the payload. Multi-line data is joined with newlines.
	Data string
	// ID is the event id, carried over from earlier events when unset.
	ID string
	// Retry is the reconnection delay requested by the server.
	Retry time.Duration
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next event. Returns io.EOF when the stream ends.
	Next() (*Event, error)
	// Close releases the underlying stream.
	Close() error
}

type reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
	lastID  string
}

// NewReader creates an SSE reader from a readable stream.
func NewReader(body io.ReadCloser) Reader {
	s := bufio.NewScanner(body)
	s.Buffer(make([]byte, 0, 4096), maxEventSize)
	return &reader{scanner: s, body: body}
}

// FromResponse wraps a response fetched with core.ResponseStream.
func FromResponse(resp *core.Response) (Reader, error) {
	body, ok := resp.Data.(io.ReadCloser)
	if !ok {
		return nil, ErrNotStream
	}
	mt := contenttype.NewMediaType(resp.Headers.Get("Content-Type"))
	if !mt.Matches(eventStreamMediaType) {
		return nil, ErrNotEventStream
	}
	return NewReader(body), nil
}

func (r *reader) Next() (*Event, error) {
	event := Event{ID: r.lastID}
	var data []string

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if len(data) > 0 {
				return r.finish(&event, data), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseSSELine(line)
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			event.Event = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				event.ID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				event.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		return r.finish(&event, data), nil
	}
	return nil, io.EOF
}

func (r *reader) finish(event *Event, data []string) *Event {
	event.Data = strings.Join(data, "\n")
	r.lastID = event.ID
	return event
}

func (r *reader) Close() error {
	return r.body.Close()
}

// parseSSELine splits a line into field and value, dropping one leading
// space from the value.
func parseSSELine(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
