package callsession

import (
	"encoding/base64"
	"strings"
	"sync"
	"time"
)

// DefaultBufferExpiry bounds how long an incomplete message buffer may sit
// idle before it is discarded. The agent never resumes a message after a
// disconnect, so stale buffers are pure leak.
const DefaultBufferExpiry = 30 * time.Second

type chunkBuffer struct {
	slots        []string
	lastActivity time.Time
}

// reassembler rebuilds chunked translated-audio payloads. Chunks may arrive
// in any order and several messages may be in flight at once; each messageId
// owns an independent buffer.
type reassembler struct {
	mu      sync.Mutex
	buffers map[string]*chunkBuffer
	expiry  time.Duration
	now     func() time.Time
}

func newReassembler(expiry time.Duration) *reassembler {
	if expiry <= 0 {
		expiry = DefaultBufferExpiry
	}
	return &reassembler{
		buffers: make(map[string]*chunkBuffer),
		expiry:  expiry,
		now:     time.Now,
	}
}

// start allocates the buffer for a message. A duplicate start resets the
// buffer, discarding any chunks received so far.
func (r *reassembler) start(messageID string, totalChunks int) {
	if messageID == "" || totalChunks <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.buffers[messageID] = &chunkBuffer{
		slots:        make([]string, totalChunks),
		lastActivity: r.now(),
	}
}

// chunk stores one fragment by index. When every slot is filled the chunks
// are concatenated in index order, decoded, and returned; the buffer is
// deleted in the same step. A chunk for an unknown messageId or with an
// out-of-range index is ignored.
func (r *reassembler) chunk(messageID string, index int, audio string) (decoded []byte, complete bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.buffers[messageID]
	if !ok {
		return nil, false
	}
	if index < 0 || index >= len(buf.slots) {
		return nil, false
	}
	buf.slots[index] = audio
	buf.lastActivity = r.now()

	// completion is detected by counting filled slots, not by an end marker
	filled := 0
	for _, s := range buf.slots {
		if s != "" {
			filled++
		}
	}
	if filled != len(buf.slots) {
		return nil, false
	}

	var joined strings.Builder
	for _, s := range buf.slots {
		joined.WriteString(s)
	}
	delete(r.buffers, messageID)

	raw, err := base64.StdEncoding.DecodeString(joined.String())
	if err != nil {
		// bad payload from the agent: drop it, the call goes on
		return nil, false
	}
	return raw, true
}

// sweep discards buffers that have been idle past the expiry window.
func (r *reassembler) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *reassembler) sweepLocked() int {
	cutoff := r.now().Add(-r.expiry)
	removed := 0
	for id, buf := range r.buffers {
		if buf.lastActivity.Before(cutoff) {
			delete(r.buffers, id)
			removed++
		}
	}
	return removed
}

func (r *reassembler) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}
