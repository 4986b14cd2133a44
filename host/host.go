// Package host defines the narrow interfaces bilist uses to talk to
// its hosting process: a typed byte-stream codec for snapshots and a
// timer-scheduling primitive for the background sweeper. Neither the
// codec's on-disk representation nor the scheduler's execution model
// is bilist's concern — it only ever calls through these interfaces,
// the same way the original module treated persistence framing and the
// timer source as collaborators supplied by its host process.
package host

// Codec is a typed byte stream a snapshot is written to or read from.
// Implementations decide framing, compression, and storage medium;
// bilist only calls these methods in a fixed field order, documented
// on Container.Save.
type Codec interface {
	WriteUint64(v uint64) error
	ReadUint64() (uint64, error)

	WriteInt64(v int64) error
	ReadInt64() (int64, error)

	WriteBytes(b []byte) error
	ReadBytes() ([]byte, error)
}

// Scheduler arms a one-shot callback after afterMS milliseconds,
// returning a function that cancels it if it hasn't fired yet.
// Container uses this for the sweeper; it never starts goroutines or
// timers of its own.
type Scheduler interface {
	Schedule(afterMS int64, fn func()) (cancel func())
}

// Clock returns the current time as a Unix millisecond timestamp.
// Abstracted so tests can control expiry without sleeping.
type Clock interface {
	NowMS() int64
}
