package realtime

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// writeFrame sends one STOMP frame as one WebSocket text message.
func writeFrame(w io.Writer, f *frame.Frame) error {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Command, err)
	}
	return wsutil.WriteClientText(w, buf.Bytes())
}

// readFrame returns the next STOMP frame from the server, skipping
// heart-beats and non-data WebSocket messages.
func readFrame(rw io.ReadWriter) (*frame.Frame, error) {
	for {
		payload, op, err := wsutil.ReadServerData(rw)
		if err != nil {
			return nil, err
		}
		if op != ws.OpText && op != ws.OpBinary {
			continue
		}
		if len(bytes.TrimSpace(payload)) == 0 {
			continue
		}
		f, err := frame.NewReader(bytes.NewReader(payload)).Read()
		if err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		if f == nil {
			continue
		}
		return f, nil
	}
}

type readWriter struct {
	io.Reader
	io.Writer
}
