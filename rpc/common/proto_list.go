package common

// --------------------------------------------------------------------------
// List Message Factory Functions
// --------------------------------------------------------------------------

func NewLPushRequest(key string, vals [][]byte) *Message {
	return &Message{MsgType: MsgTKVLPush, Key: key, Values: vals}
}

func NewRPushRequest(key string, vals [][]byte) *Message {
	return &Message{MsgType: MsgTKVRPush, Key: key, Values: vals}
}

func newPushResponse(t MessageType, length int, err error) *Message {
	msg := &Message{MsgType: t, IntResult: int64(length)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLPushResponse(length int, err error) *Message { return newPushResponse(MsgTKVLPush, length, err) }
func NewRPushResponse(length int, err error) *Message { return newPushResponse(MsgTKVRPush, length, err) }

func NewLPopRequest(key string, count int) *Message {
	return &Message{MsgType: MsgTKVLPop, Key: key, Count: count}
}

func NewRPopRequest(key string, count int) *Message {
	return &Message{MsgType: MsgTKVRPop, Key: key, Count: count}
}

func newPopResponse(t MessageType, vals [][]byte, ok bool, err error) *Message {
	msg := &Message{MsgType: t, Values: vals, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLPopResponse(vals [][]byte, ok bool, err error) *Message {
	return newPopResponse(MsgTKVLPop, vals, ok, err)
}

func NewRPopResponse(vals [][]byte, ok bool, err error) *Message {
	return newPopResponse(MsgTKVRPop, vals, ok, err)
}

func NewLLenRequest(key string) *Message {
	return &Message{MsgType: MsgTKVLLen, Key: key}
}

func NewLLenResponse(length int, err error) *Message {
	msg := &Message{MsgType: MsgTKVLLen, IntResult: int64(length)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLIndexRequest(key string, index int) *Message {
	return &Message{MsgType: MsgTKVLIndex, Key: key, Index: index}
}

func NewLIndexResponse(val []byte, ok bool, err error) *Message {
	msg := &Message{MsgType: MsgTKVLIndex, Value: val, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLSetRequest(key string, index int, val []byte) *Message {
	return &Message{MsgType: MsgTKVLSet, Key: key, Index: index, Value: val}
}

func NewLSetResponse(err error) *Message {
	msg := &Message{MsgType: MsgTKVLSet}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLRangeRequest(key string, start, stop int) *Message {
	return &Message{MsgType: MsgTKVLRange, Key: key, Index: start, Count: stop}
}

func NewLRangeResponse(vals [][]byte, err error) *Message {
	msg := &Message{MsgType: MsgTKVLRange, Values: vals}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLTrimRequest(key string, start, stop int) *Message {
	return &Message{MsgType: MsgTKVLTrim, Key: key, Index: start, Count: stop}
}

func NewLTrimResponse(err error) *Message {
	msg := &Message{MsgType: MsgTKVLTrim}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLInsertRequest(key string, pivot []byte, where uint8, val []byte) *Message {
	return &Message{MsgType: MsgTKVLInsert, Key: key, Pivot: pivot, Where: where, Value: val}
}

func NewLInsertResponse(inserted bool, err error) *Message {
	msg := &Message{MsgType: MsgTKVLInsert, Ok: inserted}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewLRemRequest(key string, val []byte, count int) *Message {
	return &Message{MsgType: MsgTKVLRem, Key: key, Value: val, Count: count}
}

func NewLRemResponse(removed int, err error) *Message {
	msg := &Message{MsgType: MsgTKVLRem, IntResult: int64(removed)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}
