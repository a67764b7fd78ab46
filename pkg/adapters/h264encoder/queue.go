package h264encoder

import (
	"sync"

	"github.com/user/tickclip/pkg/ports"
)

// packetQueue hands packets from the stdout reader to the encoder caller.
// It is unbounded so ffmpeg never stalls on a full output pipe while the
// caller is blocked writing the next frame.
type packetQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []ports.Packet
	done  bool
	err   error
}

func newPacketQueue() *packetQueue {
	q := &packetQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *packetQueue) push(pkt ports.Packet) {
	q.mu.Lock()
	q.items = append(q.items, pkt)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// finish marks the end of output. err is the read error, if any.
func (q *packetQueue) finish(err error) {
	q.mu.Lock()
	q.done = true
	q.err = err
	q.mu.Unlock()
	q.cond.Broadcast()
}

// tryPop returns the next packet without blocking. When ok is false, done
// reports whether more packets can still arrive.
func (q *packetQueue) tryPop() (pkt ports.Packet, ok, done bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		return q.shift(), true, false, nil
	}
	return ports.Packet{}, false, q.done, q.err
}

// pop blocks until a packet is available or the output has ended.
func (q *packetQueue) pop() (pkt ports.Packet, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.done {
		q.cond.Wait()
	}
	if len(q.items) > 0 {
		return q.shift(), true, nil
	}
	return ports.Packet{}, false, q.err
}

// wait blocks until the output has ended.
func (q *packetQueue) wait() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.done {
		q.cond.Wait()
	}
	return q.err
}

func (q *packetQueue) shift() ports.Packet {
	pkt := q.items[0]
	q.items[0] = ports.Packet{}
	q.items = q.items[1:]
	return pkt
}
