package client

import (
	"fmt"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/db"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/kvquill/quill/lib/store"
	"github.com/kvquill/quill/rpc/common"
	"github.com/kvquill/quill/rpc/serializer"
	"github.com/kvquill/quill/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a client config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value []byte) (err error) {
	req := common.NewSetRequest(key, value)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) SetE(key string, value []byte, expireIn, deleteIn uint64) (err error) {
	req := common.NewSetERequest(key, value, expireIn, deleteIn)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) (err error) {
	req := common.NewSetEIfUnsetRequest(key, value, expireIn, deleteIn)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Expire(key string) (err error) {
	req := common.NewExpireRequest(key)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Delete(key string) (err error) {
	req := common.NewDeleteRequest(key)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) Has(key string) (loaded bool, err error) {
	req := common.NewHasRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// GetDBInfo is not implemented for rpc
func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	return db.DatabaseInfo{}, fmt.Errorf("the GetDBInfo() method is not implemented in the rpc client adapter")
}

// --------------------------------------------------------------------------
// List Operations
// --------------------------------------------------------------------------

func (i *rpcStore) LPush(key string, vals [][]byte) (length int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLPushRequest(key, vals), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) RPush(key string, vals [][]byte) (length int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewRPushRequest(key, vals), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) LPop(key string, count int) (vals [][]byte, ok bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLPopRequest(key, count), i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Values, resp.Ok, nil
}

func (i *rpcStore) RPop(key string, count int) (vals [][]byte, ok bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewRPopRequest(key, count), i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Values, resp.Ok, nil
}

func (i *rpcStore) LLen(key string) (length int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLLenRequest(key), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) LIndex(key string, index int) (val []byte, ok bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLIndexRequest(key, index), i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) LSet(key string, index int, val []byte) (err error) {
	_, err = invokeRPCRequest(i.shardId, common.NewLSetRequest(key, index, val), i.transport, i.serializer)
	return err
}

func (i *rpcStore) LRange(key string, start, stop int) (vals [][]byte, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLRangeRequest(key, start, stop), i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (i *rpcStore) LTrim(key string, start, stop int) (err error) {
	_, err = invokeRPCRequest(i.shardId, common.NewLTrimRequest(key, start, stop), i.transport, i.serializer)
	return err
}

func (i *rpcStore) LInsert(key string, pivot []byte, where listvalue.Pivot, val []byte) (inserted bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLInsertRequest(key, pivot, uint8(where), val), i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) LRem(key string, val []byte, count int) (removed int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewLRemRequest(key, val, count), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

// --------------------------------------------------------------------------
// Hash Operations
// --------------------------------------------------------------------------

func (i *rpcStore) HSet(key string, fields map[string][]byte) (inserted int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHSetRequest(key, fields), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) HGet(key, field string) (val []byte, ok bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHGetRequest(key, field), i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) HDel(key string, fields []string) (removed int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHDelRequest(key, fields), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) HLen(key string) (length int, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHLenRequest(key), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return int(resp.IntResult), nil
}

func (i *rpcStore) HExists(key, field string) (ok bool, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHExistsRequest(key, field), i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) HGetAll(key string) (fields map[string][]byte, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHGetAllRequest(key), i.transport, i.serializer)
	if err != nil {
		return nil, err
	}
	return resp.FieldMap(), nil
}

func (i *rpcStore) HIncrBy(key, field string, delta int64) (result int64, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHIncrByRequest(key, field, delta), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return resp.IntResult, nil
}

func (i *rpcStore) HIncrByFloat(key, field string, delta float64) (result float64, err error) {
	resp, err := invokeRPCRequest(i.shardId, common.NewHIncrByFloatRequest(key, field, delta), i.transport, i.serializer)
	if err != nil {
		return 0, err
	}
	return resp.FloatResult, nil
}

// --------------------------------------------------------------------------
// Blocking List Operations
// --------------------------------------------------------------------------

// NewBlockingClient returns a local client identity; it never touches the
// transport since blocking state is tracked server-side and keyed by
// ClientID over the wire.
func (i *rpcStore) NewBlockingClient(id string) *blocking.Client {
	return blocking.NewClient(id)
}

// BlockingPop sends one request that the server holds open until a value
// is ready or the timeout elapses, since RPC offers no channel for an
// out-of-band asynchronous delivery back to this client.
func (i *rpcStore) BlockingPop(c *blocking.Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (reply *blocking.Reply, blocked bool) {
	req := common.NewBlockingPopRequest(c.ID, keys, uint8(dir), timeout.Milliseconds(), target, uint8(targetWhere), inMulti)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return &blocking.Reply{Err: err}, false
	}
	if !resp.Ok {
		return &blocking.Reply{Nil: true}, false
	}
	return &blocking.Reply{Key: resp.Key, Value: resp.Value}, false
}

// ProcessReady has no meaning on the client side; the server drives its
// own ready-keys delivery after every mutating command it handles.
func (i *rpcStore) ProcessReady() {}

// ExpireBlockingTimeouts has no meaning on the client side for the same
// reason as ProcessReady.
func (i *rpcStore) ExpireBlockingTimeouts(now time.Time) {}

// DisconnectBlockingClient is a no-op on the client side: BlockingPop over
// RPC never leaves a client parked past the call that issued it.
func (i *rpcStore) DisconnectBlockingClient(c *blocking.Client) {}
