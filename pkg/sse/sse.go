// Package sse consumes server-sent event streams, such as the gateway's
// streamed chat completions.
package sse

import (
	"bufio"
	"bytes"
	"io"
)

type Event struct {
	Event string `json:"event"`
	Data  []byte `json:"data"`
}

// StreamSseResponse reads SSE frames from r until EOF. The reader is closed
// when the stream ends. Field values keep their payload with the optional
// leading space stripped, so "data: [DONE]" yields Data "[DONE]".
func StreamSseResponse(r io.ReadCloser) <-chan *Event {
	scanner := bufio.NewScanner(r)
	ch := make(chan *Event, 10)
	go func() {
		defer close(ch)
		defer r.Close()
		currentEvent := &Event{}
		for scanner.Scan() {
			line := scanner.Bytes()
			if bytes.HasPrefix(line, []byte("event:")) {
				currentEvent.Event = string(fieldValue(line, "event:"))
			}
			if bytes.HasPrefix(line, []byte("data:")) {
				currentEvent.Data = fieldValue(line, "data:")
				ch <- currentEvent
				currentEvent = &Event{}
			}
		}
	}()
	return ch
}

func fieldValue(line []byte, prefix string) []byte {
	value := bytes.TrimPrefix(line, []byte(prefix))
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return value
}
