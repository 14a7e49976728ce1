package domain

// ChannelItems is the content of the shared out-of-band slot: typed binary items,
// keyed by item type the way an OS pasteboard stores them.
type ChannelItems map[string][]byte

// PlainTextItem is the item type under which the previous plain-text content lives.
const PlainTextItem = "public.utf8-plain-text"

// Clone returns a deep copy so callers never alias channel storage.
func (c ChannelItems) Clone() ChannelItems {
	if c == nil {
		return nil
	}
	out := make(ChannelItems, len(c))
	for k, v := range c {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Payload is a decoded, namespaced key-value map written by a platform codec.
type Payload map[string]any

// String returns the value at key when it is a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bytes returns the value at key when it is a byte slice.
func (p Payload) Bytes(key string) []byte {
	b, _ := p[key].([]byte)
	return b
}
