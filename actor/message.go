package actor

import "sync/atomic"

// Kind classifies a Message for lifecycle and supervision handling.
type Kind uint8

const (
	// User is an ordinary application message delivered to Behavior.Receive.
	User Kind = iota
	// System marks system-level traffic sent through ActorRef.SendSystem.
	// The runtime generates none itself; Receive gets it like any message.
	System
	// Control carries lifecycle directives such as the Stop signal. Control
	// messages are still accepted into the mailbox while an actor is
	// Stopping; Actor.drain processes messages only while it is Running.
	Control
)

func (k Kind) String() string {
	switch k {
	case User:
		return "User"
	case System:
		return "System"
	case Control:
		return "Control"
	default:
		return "Unknown"
	}
}

// InlineCap is the maximum number of payload bytes a Message carries
// inline. Chosen so sizeof(Message) fits a single 64-byte cache line
// alongside its other fields (27 bytes of ids, kind, flags and length
// plus 37 payload bytes is exactly 64).
const InlineCap = 37

var monotonicCounter atomic.Uint64

// Message is a fixed-size value: sender, receiver, kind, flags, an inline
// payload and its length, and a monotonic id used only for test oracles.
// Messages are copied by assignment and require no per-send allocation;
// the ring stores them by value.
type Message struct {
	Sender     ActorId
	Receiver   ActorId
	MonotonicID uint64
	Kind       Kind
	Flags      byte
	payloadLen uint8
	payload    [InlineCap]byte
}

// NewUserMessage constructs a User-kind message with no payload set.
func NewUserMessage(sender, receiver ActorId) Message {
	return newMessage(sender, receiver, User)
}

// NewSystemMessage constructs a System-kind message with no payload set.
func NewSystemMessage(sender, receiver ActorId) Message {
	return newMessage(sender, receiver, System)
}

// NewControlMessage constructs a Control-kind message with no payload set.
func NewControlMessage(sender, receiver ActorId) Message {
	return newMessage(sender, receiver, Control)
}

func newMessage(sender, receiver ActorId, kind Kind) Message {
	return Message{
		Sender:      sender,
		Receiver:    receiver,
		Kind:        kind,
		MonotonicID: monotonicCounter.Add(1),
	}
}

// FlagStopSignal marks a Control message as the lifecycle stop directive,
// the only Control traffic Actor.drain currently recognizes.
const FlagStopSignal byte = 1 << 0

// NewStopSignal constructs the Control message Actor.stop routes through
// the mailbox so the Stopping->Stopped transition and PostStop run on
// whichever worker is draining the receiver, serialized with any
// in-flight Receive call the same way bollywood/engine.go's Engine.Stop
// routes Stopping{} through Send rather than mutating process state from
// the caller's own goroutine.
func NewStopSignal(receiver ActorId) Message {
	msg := newMessage(ActorId(0), receiver, Control)
	msg.Flags |= FlagStopSignal
	return msg
}

// IsStopSignal reports whether m is the Control message built by
// NewStopSignal.
func (m Message) IsStopSignal() bool {
	return m.Kind == Control && m.Flags&FlagStopSignal != 0
}

// SetData copies up to InlineCap bytes of b into the message's inline
// payload. Returns ErrPayloadTooLarge and leaves the message unchanged if
// b does not fit.
func (m *Message) SetData(b []byte) error {
	if len(b) > InlineCap {
		return ErrPayloadTooLarge
	}
	m.payloadLen = uint8(len(b))
	copy(m.payload[:], b)
	return nil
}

// Data returns the inline payload bytes, bounded by the length passed to
// SetData. The returned slice aliases the message's internal array; copy
// it out if it must outlive the message.
func (m *Message) Data() []byte {
	return m.payload[:m.payloadLen]
}

// PayloadLen reports how many payload bytes are currently set.
func (m *Message) PayloadLen() int {
	return int(m.payloadLen)
}
