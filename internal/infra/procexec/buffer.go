package procexec

import "fmt"

// tailBuffer keeps the most recent limit bytes written to it and counts the
// rest. Diagnostics from transcoders end with the actual failure, so the tail
// is the part worth keeping.
type tailBuffer struct {
	buf     []byte
	limit   int
	dropped int64
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n == 0 {
		return 0, nil
	}
	if b.limit <= 0 {
		b.dropped += int64(n)
		return n, nil
	}
	if n >= b.limit {
		b.dropped += int64(len(b.buf) + n - b.limit)
		b.buf = append(b.buf[:0], p[n-b.limit:]...)
		return n, nil
	}
	if over := len(b.buf) + n - b.limit; over > 0 {
		b.dropped += int64(over)
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	b.buf = append(b.buf, p...)
	return n, nil
}

// Truncated reports whether any output was discarded.
func (b *tailBuffer) Truncated() bool { return b.dropped > 0 }

func (b *tailBuffer) String() string {
	if b.dropped == 0 {
		return string(b.buf)
	}
	return fmt.Sprintf("[... %d bytes truncated ...]\n%s", b.dropped, b.buf)
}
