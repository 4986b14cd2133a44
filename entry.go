package bilist

// Entry is one stored record. Keys and the value are owned copies;
// ExpireAt is an absolute Unix millisecond timestamp, with 0 meaning
// "never expires". prev/next link the entry into the container's ring
// in reverse insertion order and are mutated only by Container.
type Entry struct {
	K1, K2, Value []byte
	ExpireAt      int64

	prev, next *Entry
}

func (e *Entry) expired(nowMS int64) bool {
	return e.ExpireAt != 0 && e.ExpireAt <= nowMS
}
