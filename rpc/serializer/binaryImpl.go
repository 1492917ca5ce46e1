package serializer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kvquill/quill/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present. Three flag bytes
// are needed now that the wire format carries list/hash/blocking payloads
// on top of the original string-command fields.
const (
	hasKey      byte = 1 << 0
	hasExpireIn byte = 1 << 1
	hasDeleteIn byte = 1 << 2
	hasValue    byte = 1 << 3
	hasOk       byte = 1 << 4
	hasErr      byte = 1 << 5
	hasMeta     byte = 1 << 6
	hasValues   byte = 1 << 7
)

const (
	hasFieldNames  byte = 1 << 0
	hasIndex       byte = 1 << 1
	hasCount       byte = 1 << 2
	hasWhere       byte = 1 << 3
	hasPivot       byte = 1 << 4
	hasTarget      byte = 1 << 5
	hasTargetWhere byte = 1 << 6
	hasTimeoutMs   byte = 1 << 7
)

const (
	hasInMulti     byte = 1 << 0
	hasClientID    byte = 1 << 1
	hasIntResult   byte = 1 << 2
	hasFloatResult byte = 1 << 3
	hasDelta       byte = 1 << 4
	hasDeltaFloat  byte = 1 << 5
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	result[0] = byte(msg.MsgType)

	var flags, flags2, flags3 byte

	pos := 4 // MsgType + 3 flag bytes

	if msg.Key != "" {
		flags |= hasKey
		pos = putBytes(result, pos, []byte(msg.Key))
	}

	if msg.ExpireIn > 0 {
		flags |= hasExpireIn
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.ExpireIn)
		pos += 8
	}

	if msg.DeleteIn > 0 {
		flags |= hasDeleteIn
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.DeleteIn)
		pos += 8
	}

	if msg.Value != nil {
		flags |= hasValue
		pos = putBytes(result, pos, msg.Value)
	}

	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos++
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putBytes(result, pos, []byte(msg.Err))
	}

	if msg.Meta != nil {
		flags |= hasMeta
		pos = putBytes(result, pos, msg.Meta)
	}

	if msg.Values != nil {
		flags |= hasValues
		pos = putBytesSlice(result, pos, msg.Values)
	}

	if msg.FieldNames != nil {
		flags2 |= hasFieldNames
		pos = putStringSlice(result, pos, msg.FieldNames)
	}

	if msg.Index != 0 {
		flags2 |= hasIndex
		pos = putInt64(result, pos, int64(msg.Index))
	}

	if msg.Count != 0 {
		flags2 |= hasCount
		pos = putInt64(result, pos, int64(msg.Count))
	}

	if msg.Where != 0 {
		flags2 |= hasWhere
		result[pos] = msg.Where
		pos++
	}

	if msg.Pivot != nil {
		flags2 |= hasPivot
		pos = putBytes(result, pos, msg.Pivot)
	}

	if msg.Target != "" {
		flags2 |= hasTarget
		pos = putBytes(result, pos, []byte(msg.Target))
	}

	if msg.TargetWhere != 0 {
		flags2 |= hasTargetWhere
		result[pos] = msg.TargetWhere
		pos++
	}

	if msg.TimeoutMs != 0 {
		flags2 |= hasTimeoutMs
		pos = putInt64(result, pos, msg.TimeoutMs)
	}

	if msg.InMulti {
		flags3 |= hasInMulti
		result[pos] = 1
		pos++
	}

	if msg.ClientID != "" {
		flags3 |= hasClientID
		pos = putBytes(result, pos, []byte(msg.ClientID))
	}

	if msg.IntResult != 0 {
		flags3 |= hasIntResult
		pos = putInt64(result, pos, msg.IntResult)
	}

	if msg.FloatResult != 0 {
		flags3 |= hasFloatResult
		pos = putFloat64(result, pos, msg.FloatResult)
	}

	if msg.Delta != 0 {
		flags3 |= hasDelta
		pos = putInt64(result, pos, msg.Delta)
	}

	if msg.DeltaFloat != 0 {
		flags3 |= hasDeltaFloat
		pos = putFloat64(result, pos, msg.DeltaFloat)
	}

	result[1] = flags
	result[2] = flags2
	result[3] = flags3

	return result[:pos], nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 4 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	flags2 := data[2]
	flags3 := data[3]

	pos := 4
	var err error

	if flags&hasKey != 0 {
		var b []byte
		if b, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("key: %w", err)
		}
		msg.Key = string(b)
	} else {
		msg.Key = ""
	}

	if flags&hasExpireIn != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for ExpireIn")
		}
		msg.ExpireIn = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.ExpireIn = 0
	}

	if flags&hasDeleteIn != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for DeleteIn")
		}
		msg.DeleteIn = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.DeleteIn = 0
	}

	if flags&hasValue != 0 {
		if msg.Value, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("value: %w", err)
		}
	} else {
		msg.Value = nil
	}

	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos++
	} else {
		msg.Ok = false
	}

	if flags&hasErr != 0 {
		var b []byte
		if b, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("err: %w", err)
		}
		msg.Err = string(b)
	} else {
		msg.Err = ""
	}

	if flags&hasMeta != 0 {
		if msg.Meta, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
	} else {
		msg.Meta = nil
	}

	if flags&hasValues != 0 {
		if msg.Values, pos, err = getBytesSlice(data, pos); err != nil {
			return fmt.Errorf("values: %w", err)
		}
	} else {
		msg.Values = nil
	}

	if flags2&hasFieldNames != 0 {
		if msg.FieldNames, pos, err = getStringSlice(data, pos); err != nil {
			return fmt.Errorf("fieldNames: %w", err)
		}
	} else {
		msg.FieldNames = nil
	}

	if flags2&hasIndex != 0 {
		var v int64
		if v, pos, err = getInt64(data, pos); err != nil {
			return fmt.Errorf("index: %w", err)
		}
		msg.Index = int(v)
	} else {
		msg.Index = 0
	}

	if flags2&hasCount != 0 {
		var v int64
		if v, pos, err = getInt64(data, pos); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		msg.Count = int(v)
	} else {
		msg.Count = 0
	}

	if flags2&hasWhere != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Where")
		}
		msg.Where = data[pos]
		pos++
	} else {
		msg.Where = 0
	}

	if flags2&hasPivot != 0 {
		if msg.Pivot, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("pivot: %w", err)
		}
	} else {
		msg.Pivot = nil
	}

	if flags2&hasTarget != 0 {
		var b []byte
		if b, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("target: %w", err)
		}
		msg.Target = string(b)
	} else {
		msg.Target = ""
	}

	if flags2&hasTargetWhere != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for TargetWhere")
		}
		msg.TargetWhere = data[pos]
		pos++
	} else {
		msg.TargetWhere = 0
	}

	if flags2&hasTimeoutMs != 0 {
		if msg.TimeoutMs, pos, err = getInt64(data, pos); err != nil {
			return fmt.Errorf("timeoutMs: %w", err)
		}
	} else {
		msg.TimeoutMs = 0
	}

	if flags3&hasInMulti != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for InMulti")
		}
		msg.InMulti = data[pos] != 0
		pos++
	} else {
		msg.InMulti = false
	}

	if flags3&hasClientID != 0 {
		var b []byte
		if b, pos, err = getBytes(data, pos); err != nil {
			return fmt.Errorf("clientID: %w", err)
		}
		msg.ClientID = string(b)
	} else {
		msg.ClientID = ""
	}

	if flags3&hasIntResult != 0 {
		if msg.IntResult, pos, err = getInt64(data, pos); err != nil {
			return fmt.Errorf("intResult: %w", err)
		}
	} else {
		msg.IntResult = 0
	}

	if flags3&hasFloatResult != 0 {
		if msg.FloatResult, pos, err = getFloat64(data, pos); err != nil {
			return fmt.Errorf("floatResult: %w", err)
		}
	} else {
		msg.FloatResult = 0
	}

	if flags3&hasDelta != 0 {
		if msg.Delta, pos, err = getInt64(data, pos); err != nil {
			return fmt.Errorf("delta: %w", err)
		}
	} else {
		msg.Delta = 0
	}

	if flags3&hasDeltaFloat != 0 {
		if msg.DeltaFloat, pos, err = getFloat64(data, pos); err != nil {
			return fmt.Errorf("deltaFloat: %w", err)
		}
	} else {
		msg.DeltaFloat = 0
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// putBytes writes a length-prefixed byte slice at pos and returns the
// position after it.
func putBytes(dst []byte, pos int, v []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(v)))
	pos += 4
	copy(dst[pos:pos+len(v)], v)
	return pos + len(v)
}

func getBytes(data []byte, pos int) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for length")
	}
	l := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	if pos+int(l) > len(data) {
		return nil, pos, fmt.Errorf("data too short for data")
	}
	out := make([]byte, l)
	copy(out, data[pos:pos+int(l)])
	return out, pos + int(l), nil
}

func putBytesSlice(dst []byte, pos int, v [][]byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(v)))
	pos += 4
	for _, item := range v {
		pos = putBytes(dst, pos, item)
	}
	return pos
}

func getBytesSlice(data []byte, pos int) ([][]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for count")
	}
	n := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	out := make([][]byte, n)
	var err error
	for i := range out {
		if out[i], pos, err = getBytes(data, pos); err != nil {
			return nil, pos, err
		}
	}
	return out, pos, nil
}

func putStringSlice(dst []byte, pos int, v []string) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(v)))
	pos += 4
	for _, item := range v {
		pos = putBytes(dst, pos, []byte(item))
	}
	return pos
}

func getStringSlice(data []byte, pos int) ([]string, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for count")
	}
	n := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	out := make([]string, n)
	var b []byte
	var err error
	for i := range out {
		if b, pos, err = getBytes(data, pos); err != nil {
			return nil, pos, err
		}
		out[i] = string(b)
	}
	return out, pos, nil
}

func putInt64(dst []byte, pos int, v int64) int {
	binary.BigEndian.PutUint64(dst[pos:pos+8], uint64(v))
	return pos + 8
}

func getInt64(data []byte, pos int) (int64, int, error) {
	if pos+8 > len(data) {
		return 0, pos, fmt.Errorf("data too short")
	}
	return int64(binary.BigEndian.Uint64(data[pos : pos+8])), pos + 8, nil
}

func putFloat64(dst []byte, pos int, v float64) int {
	binary.BigEndian.PutUint64(dst[pos:pos+8], math.Float64bits(v))
	return pos + 8
}

func getFloat64(data []byte, pos int) (float64, int, error) {
	if pos+8 > len(data) {
		return 0, pos, fmt.Errorf("data too short")
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data[pos : pos+8])), pos + 8, nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 4 // MsgType + 3 flag bytes

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.ExpireIn > 0 {
		size += 8
	}
	if msg.DeleteIn > 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size += 1
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	if msg.Values != nil {
		size += 4
		for _, v := range msg.Values {
			size += 4 + len(v)
		}
	}
	if msg.FieldNames != nil {
		size += 4
		for _, v := range msg.FieldNames {
			size += 4 + len(v)
		}
	}
	if msg.Index != 0 {
		size += 8
	}
	if msg.Count != 0 {
		size += 8
	}
	if msg.Where != 0 {
		size += 1
	}
	if msg.Pivot != nil {
		size += 4 + len(msg.Pivot)
	}
	if msg.Target != "" {
		size += 4 + len(msg.Target)
	}
	if msg.TargetWhere != 0 {
		size += 1
	}
	if msg.TimeoutMs != 0 {
		size += 8
	}
	if msg.InMulti {
		size += 1
	}
	if msg.ClientID != "" {
		size += 4 + len(msg.ClientID)
	}
	if msg.IntResult != 0 {
		size += 8
	}
	if msg.FloatResult != 0 {
		size += 8
	}
	if msg.Delta != 0 {
		size += 8
	}
	if msg.DeltaFloat != 0 {
		size += 8
	}

	return size
}
