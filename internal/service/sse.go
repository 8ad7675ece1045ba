package service

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
)

// doneSentinel is the payload the upstream sends as its final frame.
const doneSentinel = "[DONE]"

// streamDecoder incrementally parses the upstream server-sent-event byte
// stream into text deltas. Chunks may split anywhere, including mid-line;
// the partial trailing line is retained across Feed calls, so any chunking
// of the same byte stream yields the same delta sequence.
type streamDecoder struct {
	buf  []byte
	done bool
}

// streamFrame mirrors the JSON payload of one upstream SSE event.
type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Feed appends chunk to the retained buffer and returns the text deltas of
// every complete frame it now holds. After the [DONE] sentinel has been
// seen, Feed consumes input without emitting anything.
func (d *streamDecoder) Feed(chunk []byte) []string {
	if d.done {
		return nil
	}

	d.buf = append(d.buf, chunk...)

	var deltas []string
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(d.buf[:i]))
		d.buf = d.buf[i+1:]

		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == doneSentinel {
			d.done = true
			d.buf = nil
			return deltas
		}
		if data == "" {
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			// One bad frame must never kill the stream.
			preview := data
			if len(preview) > 100 {
				preview = preview[:100]
			}
			log.Printf("[StreamDecoder] skipping malformed SSE frame: %v (data: %s)", err, preview)
			continue
		}

		if len(frame.Choices) > 0 && frame.Choices[0].Delta.Content != "" {
			deltas = append(deltas, frame.Choices[0].Delta.Content)
		}
	}

	return deltas
}

// Done reports whether the [DONE] sentinel has been seen.
func (d *streamDecoder) Done() bool {
	return d.done
}
