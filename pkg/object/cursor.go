package object

import (
	"bytes"
	"fmt"
)

// cursor walks a byte slice front to back. Every read is bounds checked and
// a short buffer is reported as ErrParse instead of panicking.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) done() bool { return c.off >= len(c.buf) }

// until returns the bytes before the next delim and advances past delim.
func (c *cursor) until(delim byte, what string) ([]byte, error) {
	rest := c.buf[c.off:]
	i := bytes.IndexByte(rest, delim)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s at offset %d: missing terminator %q", ErrParse, what, c.off, delim)
	}
	c.off += i + 1
	return rest[:i], nil
}

// take returns exactly the next n bytes.
func (c *cursor) take(n int, what string) ([]byte, error) {
	if len(c.buf)-c.off < n {
		return nil, fmt.Errorf("%w: %s at offset %d: need %d bytes, have %d", ErrParse, what, c.off, n, len(c.buf)-c.off)
	}
	out := c.buf[c.off : c.off+n]
	c.off += n
	return out, nil
}
