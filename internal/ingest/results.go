package ingest

import (
	"bufio"
	"fmt"
	"io"
)

// WriteResults writes one discovered seed per line to w, flushing
// before returning. Intended for the plain-file collaborator path;
// the HTTP job service streams the same seeds over a WebSocket
// instead of through this writer.
func WriteResults(w io.Writer, seeds []uint64) error {
	buf := bufio.NewWriter(w)
	for _, s := range seeds {
		if _, err := fmt.Fprintf(buf, "%d\n", s); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return buf.Flush()
}
