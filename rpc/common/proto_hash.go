package common

// --------------------------------------------------------------------------
// Hash Message Factory Functions
// --------------------------------------------------------------------------

func NewHSetRequest(key string, fields map[string][]byte) *Message {
	names := make([]string, 0, len(fields))
	values := make([][]byte, 0, len(fields))
	for f, v := range fields {
		names = append(names, f)
		values = append(values, v)
	}
	return &Message{MsgType: MsgTKVHSet, Key: key, FieldNames: names, Values: values}
}

// FieldMap reassembles a FieldNames/Values pair into a map, the inverse of
// NewHSetRequest.
func (m *Message) FieldMap() map[string][]byte {
	out := make(map[string][]byte, len(m.FieldNames))
	for i, name := range m.FieldNames {
		if i < len(m.Values) {
			out[name] = m.Values[i]
		}
	}
	return out
}

func NewHSetResponse(inserted int, err error) *Message {
	msg := &Message{MsgType: MsgTKVHSet, IntResult: int64(inserted)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHGetRequest(key, field string) *Message {
	return &Message{MsgType: MsgTKVHGet, Key: key, FieldNames: []string{field}}
}

func NewHGetResponse(val []byte, ok bool, err error) *Message {
	msg := &Message{MsgType: MsgTKVHGet, Value: val, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHDelRequest(key string, fields []string) *Message {
	return &Message{MsgType: MsgTKVHDel, Key: key, FieldNames: fields}
}

func NewHDelResponse(removed int, err error) *Message {
	msg := &Message{MsgType: MsgTKVHDel, IntResult: int64(removed)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHLenRequest(key string) *Message {
	return &Message{MsgType: MsgTKVHLen, Key: key}
}

func NewHLenResponse(length int, err error) *Message {
	msg := &Message{MsgType: MsgTKVHLen, IntResult: int64(length)}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHExistsRequest(key, field string) *Message {
	return &Message{MsgType: MsgTKVHExists, Key: key, FieldNames: []string{field}}
}

func NewHExistsResponse(ok bool, err error) *Message {
	msg := &Message{MsgType: MsgTKVHExists, Ok: ok}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHGetAllRequest(key string) *Message {
	return &Message{MsgType: MsgTKVHGetAll, Key: key}
}

func NewHGetAllResponse(fields map[string][]byte, err error) *Message {
	names := make([]string, 0, len(fields))
	values := make([][]byte, 0, len(fields))
	for f, v := range fields {
		names = append(names, f)
		values = append(values, v)
	}
	msg := &Message{MsgType: MsgTKVHGetAll, FieldNames: names, Values: values}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHIncrByRequest(key, field string, delta int64) *Message {
	return &Message{MsgType: MsgTKVHIncrBy, Key: key, FieldNames: []string{field}, Delta: delta}
}

func NewHIncrByResponse(result int64, err error) *Message {
	msg := &Message{MsgType: MsgTKVHIncrBy, IntResult: result}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

func NewHIncrByFloatRequest(key, field string, delta float64) *Message {
	return &Message{MsgType: MsgTKVHIncrByFloat, Key: key, FieldNames: []string{field}, DeltaFloat: delta}
}

func NewHIncrByFloatResponse(result float64, err error) *Message {
	msg := &Message{MsgType: MsgTKVHIncrByFloat, FloatResult: result}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}
