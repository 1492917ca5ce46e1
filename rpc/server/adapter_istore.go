package server

import (
	"fmt"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/kvquill/quill/lib/store"
	"github.com/kvquill/quill/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, store store.IStore) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTKVSet:
		err := store.Set(req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTKVSetE:
		err := store.SetE(req.Key, req.Value, req.ExpireIn, req.DeleteIn)
		return common.NewSetEResponse(err)
	case common.MsgTKVSetEIfUnset:
		err := store.SetEIfUnset(req.Key, req.Value, req.ExpireIn, req.DeleteIn)
		return common.NewSetEIfUnsetResponse(err)
	case common.MsgTKVExpire:
		err := store.Expire(req.Key)
		return common.NewExpireResponse(err)
	case common.MsgTKVDelete:
		err := store.Delete(req.Key)
		return common.NewDeleteResponse(err)
	case common.MsgTKVGet:
		val, ok, err := store.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVHas:
		ok, err := store.Has(req.Key)
		return common.NewHasResponse(ok, err)

	case common.MsgTKVLPush:
		length, err := store.LPush(req.Key, req.Values)
		return common.NewLPushResponse(length, err)
	case common.MsgTKVRPush:
		length, err := store.RPush(req.Key, req.Values)
		return common.NewRPushResponse(length, err)
	case common.MsgTKVLPop:
		vals, ok, err := store.LPop(req.Key, req.Count)
		return common.NewLPopResponse(vals, ok, err)
	case common.MsgTKVRPop:
		vals, ok, err := store.RPop(req.Key, req.Count)
		return common.NewRPopResponse(vals, ok, err)
	case common.MsgTKVLLen:
		length, err := store.LLen(req.Key)
		return common.NewLLenResponse(length, err)
	case common.MsgTKVLIndex:
		val, ok, err := store.LIndex(req.Key, req.Index)
		return common.NewLIndexResponse(val, ok, err)
	case common.MsgTKVLSet:
		err := store.LSet(req.Key, req.Index, req.Value)
		return common.NewLSetResponse(err)
	case common.MsgTKVLRange:
		vals, err := store.LRange(req.Key, req.Index, req.Count)
		return common.NewLRangeResponse(vals, err)
	case common.MsgTKVLTrim:
		err := store.LTrim(req.Key, req.Index, req.Count)
		return common.NewLTrimResponse(err)
	case common.MsgTKVLInsert:
		inserted, err := store.LInsert(req.Key, req.Pivot, listvalue.Pivot(req.Where), req.Value)
		return common.NewLInsertResponse(inserted, err)
	case common.MsgTKVLRem:
		removed, err := store.LRem(req.Key, req.Value, req.Count)
		return common.NewLRemResponse(removed, err)

	case common.MsgTKVHSet:
		inserted, err := store.HSet(req.Key, req.FieldMap())
		return common.NewHSetResponse(inserted, err)
	case common.MsgTKVHGet:
		val, ok, err := store.HGet(req.Key, firstOrEmpty(req.FieldNames))
		return common.NewHGetResponse(val, ok, err)
	case common.MsgTKVHDel:
		removed, err := store.HDel(req.Key, req.FieldNames)
		return common.NewHDelResponse(removed, err)
	case common.MsgTKVHLen:
		length, err := store.HLen(req.Key)
		return common.NewHLenResponse(length, err)
	case common.MsgTKVHExists:
		ok, err := store.HExists(req.Key, firstOrEmpty(req.FieldNames))
		return common.NewHExistsResponse(ok, err)
	case common.MsgTKVHGetAll:
		fields, err := store.HGetAll(req.Key)
		return common.NewHGetAllResponse(fields, err)
	case common.MsgTKVHIncrBy:
		result, err := store.HIncrBy(req.Key, firstOrEmpty(req.FieldNames), req.Delta)
		return common.NewHIncrByResponse(result, err)
	case common.MsgTKVHIncrByFloat:
		result, err := store.HIncrByFloat(req.Key, firstOrEmpty(req.FieldNames), req.DeltaFloat)
		return common.NewHIncrByFloatResponse(result, err)

	case common.MsgTKVBlockingPop:
		return adapter.handleBlockingPop(req, store)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsuported message type: %s", req.MsgType),
		)
	}
}

// handleBlockingPop drives one BLPOP/BRPOP/BRPOPLPUSH request to
// completion. A non-blocked result is returned immediately; a blocked one
// parks this request's goroutine on the client's Deliver channel until
// another connection's mutation wakes it, or its own deadline fires. The
// engine itself is never held locked across the wait - every IStore call
// here takes and releases the store's lock on its own.
func (adapter *iStoreServerAdapterImpl) handleBlockingPop(req *common.Message, s store.IStore) *common.Message {
	keys := req.Keys()
	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	c := s.NewBlockingClient(req.ClientID)

	reply, blocked := s.BlockingPop(c, keys, listvalue.Where(req.Where), timeout, req.Target, listvalue.Where(req.TargetWhere), req.InMulti)
	if !blocked {
		return blockingReplyToMessage(reply)
	}

	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case r := <-c.Deliver:
		return blockingReplyToMessage(&r)
	case <-timeoutCh:
		s.ExpireBlockingTimeouts(time.Now())
		select {
		case r := <-c.Deliver:
			return blockingReplyToMessage(&r)
		default:
			s.DisconnectBlockingClient(c)
			return common.NewBlockingPopResponse("", nil, false, nil)
		}
	}
}

func blockingReplyToMessage(reply *blocking.Reply) *common.Message {
	if reply == nil || reply.Nil {
		return common.NewBlockingPopResponse("", nil, false, nil)
	}
	if reply.Err != nil {
		return common.NewBlockingPopResponse("", nil, false, reply.Err)
	}
	return common.NewBlockingPopResponse(reply.Key, reply.Value, true, nil)
}

func firstOrEmpty(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type MessageHandler func(req *common.Message) (resp *common.Message)

type RegisterMessageHandler func(handler MessageHandler)
