package core

import "sync"

// Serial identifies a render target, buffer or native index/vertex buffer for
// the lifetime of the process. Zero is never issued.
type Serial uint32

// SerialIssuer hands out monotonically increasing serials. Serials are never
// reused; wrapping around is not handled.
type SerialIssuer struct {
	mu   sync.Mutex
	next Serial
}

// DefaultSerials is shared by renderers that are not given their own issuer.
var DefaultSerials = NewSerialIssuer()

func NewSerialIssuer() *SerialIssuer {
	return &SerialIssuer{next: 1}
}

// Issue returns a fresh serial.
func (s *SerialIssuer) Issue() Serial {
	return s.IssueBlock(1)
}

// IssueBlock reserves count consecutive serials and returns the first one.
func (s *SerialIssuer) IssueBlock(count uint32) Serial {
	if count == 0 {
		count = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.next
	s.next += Serial(count)
	return first
}

// Peek returns the serial the next Issue call will hand out.
func (s *SerialIssuer) Peek() Serial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
