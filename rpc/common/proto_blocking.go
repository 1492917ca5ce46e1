package common

// --------------------------------------------------------------------------
// Blocking List Message Factory Functions
// --------------------------------------------------------------------------

// NewBlockingPopRequest builds a BLPOP/BRPOP/BRPOPLPUSH request. target
// empty means a plain BLPOP/BRPOP; timeoutMs <= 0 means block forever.
func NewBlockingPopRequest(clientID string, keys []string, where uint8, timeoutMs int64, target string, targetWhere uint8, inMulti bool) *Message {
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = []byte(k)
	}
	return &Message{
		MsgType:     MsgTKVBlockingPop,
		ClientID:    clientID,
		Values:      values,
		Where:       where,
		TimeoutMs:   timeoutMs,
		Target:      target,
		TargetWhere: targetWhere,
		InMulti:     inMulti,
	}
}

// Keys reassembles the blocking-pop key list from the request's Values
// field.
func (m *Message) Keys() []string {
	out := make([]string, len(m.Values))
	for i, v := range m.Values {
		out[i] = string(v)
	}
	return out
}

// NewBlockingPopResponse builds the reply to a BlockingPop request. ok is
// false when the wait expired without a delivery (a nil reply).
func NewBlockingPopResponse(key string, val []byte, ok bool, err error) *Message {
	msg := &Message{MsgType: MsgTKVBlockingPop, Key: key, Value: val, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}
