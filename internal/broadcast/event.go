package broadcast

import (
	"fmt"
	"io"
	"strings"
)

// FormatEvent renders msg in text/event-stream framing. Multi-line data is
// split across several data fields so the client reassembles it unchanged.
func FormatEvent(msg Message) string {
	var sb strings.Builder
	if msg.Event != "" {
		fmt.Fprintf(&sb, "event: %s\n", msg.Event)
	}
	for _, line := range strings.Split(msg.Data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}
	sb.WriteString("\n")
	return sb.String()
}

// WriteEvent writes msg to w in text/event-stream framing.
func WriteEvent(w io.Writer, msg Message) error {
	if _, err := io.WriteString(w, FormatEvent(msg)); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
