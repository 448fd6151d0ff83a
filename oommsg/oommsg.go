// Package oommsg is a notification hook fired when the frame allocator is
// exhausted. It implements no reclaim policy itself (spec.md's Non-goal
// "no swap-out" stands); it only gives an external reclaim daemon, if one
// is listening, a chance to free memory and let the faulting call retry.
package oommsg

// Message is sent on Channel when an allocation fails.
type Message struct {
	// NeedBytes is how much the failed request wanted.
	NeedBytes int
	// Resume is closed (or sent true) by a listener once it believes
	// memory may be available again. A sender that gets no response
	// simply proceeds to fail the original call with ENOMEM.
	Resume chan bool
}

// Channel receives a Message on every allocator exhaustion. It is
// buffered so Notify never blocks a faulting thread on a listener that
// isn't there.
var Channel = make(chan Message, 1)

// Notify attempts to post an OOM notification, non-blocking. It returns
// false (and no message is sent) if the channel's single slot is already
// full, which just means a notification is already pending.
func Notify(needBytes int) (resume chan bool, ok bool) {
	resume = make(chan bool, 1)
	msg := Message{NeedBytes: needBytes, Resume: resume}
	select {
	case Channel <- msg:
		return resume, true
	default:
		return nil, false
	}
}
