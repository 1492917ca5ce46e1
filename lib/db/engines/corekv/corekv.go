package corekv

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/db"
	"github.com/kvquill/quill/lib/db/util"
	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/hashvalue"
	"github.com/kvquill/quill/lib/keyspace/quicklist"
	"github.com/kvquill/quill/lib/lazyfree"
	"github.com/kvquill/quill/lib/log"
	"github.com/rcrowley/go-metrics"
)

var logger = log.GetLogger("keyspace")

const (
	magicNum     = "QUILLDB\x00"
	engineVersion = 1
)

// Options configures a new Engine.
type Options struct {
	ListMaxPackedSize int
	ListCompressDepth int
	HashMaxPackEntries int
	HashMaxPackValue   int
	LazyFreeThreshold  int
}

// DefaultOptions mirrors the out-of-the-box value-encoding thresholds.
func DefaultOptions() Options {
	return Options{
		ListMaxPackedSize:  128,
		ListCompressDepth:  0,
		HashMaxPackEntries: hashvalue.DefaultLimits.MaxPackEntries,
		HashMaxPackValue:   hashvalue.DefaultLimits.MaxPackValue,
		LazyFreeThreshold:  lazyfree.DefaultThreshold,
	}
}

// Engine is one numbered database: a keyspace.DB holding strings, lists and
// hashes, a blocking.Rendezvous serving BLPOP-family waiters on top of it,
// and a lazyfree.Reclaimer taking expensive deletions off the command path.
// Like the keyspace it wraps, Engine is not safe for concurrent use -
// exactly one command runs against it at a time.
type Engine struct {
	keyspace *keyspace.DB
	reclaim  *lazyfree.Reclaimer
	rz       *blocking.Rendezvous

	fill     quicklist.FillPolicy
	compress int
	hlimits  hashvalue.Limits

	writeIdx uint64
	// deadlines tracks the effective lazy-eviction deadline for keys that
	// have an expireIn/deleteIn set through the SetE family, ordered by
	// deadline so the soonest-to-expire key can be found in O(1) (e.g. for
	// GetInfo's metadata) without a full scan. keyspace.DB only understands
	// one deadline per key (reached => gone entirely), so an expireIn and a
	// deleteIn set on the same key both resolve to this same deadline;
	// there is no separate "hidden value, still findable key" stage.
	deadlines *util.MapHeap[string]

	sizes *util.SizeHistogram
}

var _ db.KVDB = (*Engine)(nil)

// New creates an empty Engine. registry may be nil to skip metrics
// registration for the lazy-free pending gauge.
func New(opts Options, registry metrics.Registry) *Engine {
	ks := keyspace.New()
	e := &Engine{
		keyspace: ks,
		fill:     quicklist.FillPolicy(negativeOrCount(opts.ListMaxPackedSize)),
		compress: opts.ListCompressDepth,
		hlimits: hashvalue.Limits{
			MaxPackEntries: opts.HashMaxPackEntries,
			MaxPackValue:   opts.HashMaxPackValue,
		},
		deadlines: util.NewMapHeap[string](),
		sizes:     util.NewSizeHistogram(),
	}
	e.reclaim = lazyfree.New(opts.LazyFreeThreshold, 0, registry)
	ks.SetNotifyFunc(func(ev keyspace.Event) {
		logger.Debugf("event class=%d name=%s key=%s", ev.Class, ev.Name, ev.Key)
	})
	return e
}

func negativeOrCount(n int) int {
	if n == 0 {
		return 128
	}
	return n
}

// Keyspace exposes the backing keyspace.DB for the rendezvous and command
// layer to share.
func (e *Engine) Keyspace() *keyspace.DB { return e.keyspace }

// FillPolicy/CompressDepth expose the configured list-value policy so a
// blocking.Rendezvous created alongside this engine uses the same settings
// when it must create a delivery target list.
func (e *Engine) FillPolicy() quicklist.FillPolicy { return e.fill }
func (e *Engine) CompressDepth() int               { return e.compress }

// --------------------------------------------------------------------------
// String operations
// --------------------------------------------------------------------------

func (e *Engine) Set(key string, value []byte, writeIndex uint64) {
	e.SetWriteIdx(writeIndex)
	e.deadlines.RemoveByKey(key)
	e.sizes.AddSample(len(value))
	e.keyspace.Set(key, &keyspace.Value{Kind: keyspace.KindString, Str: append([]byte{}, value...)})
}

func (e *Engine) SetE(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	e.SetWriteIdx(writeIndex)
	e.sizes.AddSample(len(value))
	e.keyspace.Set(key, &keyspace.Value{Kind: keyspace.KindString, Str: append([]byte{}, value...)})
	e.applyTTL(key, writeIndex, expireIn, deleteIn)
}

func (e *Engine) SetEIfUnset(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	e.SetWriteIdx(writeIndex)
	if e.hasLive(key, writeIndex) {
		return
	}
	e.sizes.AddSample(len(value))
	e.keyspace.Set(key, &keyspace.Value{Kind: keyspace.KindString, Str: append([]byte{}, value...)})
	e.applyTTL(key, writeIndex, expireIn, deleteIn)
}

func (e *Engine) applyTTL(key string, writeIndex, expireIn, deleteIn uint64) {
	var at uint64
	if expireIn > 0 {
		at = writeIndex + expireIn
	}
	if deleteIn > 0 && (at == 0 || writeIndex+deleteIn < at) {
		at = writeIndex + deleteIn
	}
	if at == 0 {
		e.deadlines.RemoveByKey(key)
		return
	}
	e.deadlines.AddItem(key, at)
	e.keyspace.Expire(key, int64(at))
}

// hasLive reports whether key currently holds a value that hasn't reached
// its deadline as of idx, lazily evicting it (and forgetting its
// bookkeeping) if it has.
func (e *Engine) hasLive(key string, idx uint64) bool {
	if at, ok := e.deadlines.GetPriority(key); ok && idx >= at {
		e.keyspace.Delete(key)
		e.deadlines.RemoveByKey(key)
		return false
	}
	return e.keyspace.Has(key)
}

func (e *Engine) Expire(key string, writeIndex uint64) {
	e.SetWriteIdx(writeIndex)
	if !e.hasLive(key, writeIndex) {
		return
	}
	e.deadlines.AddItem(key, writeIndex)
	e.keyspace.Expire(key, int64(writeIndex))
}

func (e *Engine) Delete(key string, writeIndex uint64) {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	e.deadlines.RemoveByKey(key)
	if !e.keyspace.Delete(key) {
		return
	}
	if ok {
		e.reclaim.Reclaim(v)
	}
}

func (e *Engine) Get(key string) ([]byte, bool) {
	if !e.hasLive(key, e.writeIdx) {
		return nil, false
	}
	v, ok := e.keyspace.Get(key)
	if !ok || v.Kind != keyspace.KindString {
		return nil, false
	}
	return append([]byte{}, v.Str...), true
}

func (e *Engine) Has(key string) bool {
	return e.hasLive(key, e.writeIdx)
}

// --------------------------------------------------------------------------
// Feature support and metadata
// --------------------------------------------------------------------------

func (e *Engine) supportedFeatures() db.Feature {
	return db.FeatureSet | db.FeatureSetE | db.FeatureSetEIfUnset |
		db.FeatureGet | db.FeatureExpire | db.FeatureDelete | db.FeatureHas |
		db.FeatureSave | db.FeatureLoad | db.FeatureGarbageCollect |
		db.FeatureList | db.FeatureHash | db.FeatureBlocking
}

func (e *Engine) SupportsFeature(feature db.Feature) bool {
	return e.supportedFeatures()&feature == feature
}

func (e *Engine) GetInfo() db.DatabaseInfo {
	keys := 0
	e.keyspace.ForEachKey(func(string, *keyspace.Value) { keys++ })

	var nextDeadline uint64
	if _, at, ok := e.deadlines.Peek(); ok {
		nextDeadline = at
	}

	meta := &struct {
		Keys             int              `json:"keys"`
		WriteIndex       uint64           `json:"write_index"`
		PendingReclaim   int64            `json:"pending_reclaim"`
		TrackedDeadlines int              `json:"tracked_deadlines"`
		NextDeadline     uint64           `json:"next_deadline,omitempty"`
		ValueSizes       util.Stats       `json:"value_sizes"`
	}{
		Keys:             keys,
		WriteIndex:       e.writeIdx,
		PendingReclaim:   e.reclaim.Pending(),
		TrackedDeadlines: e.deadlines.Len(),
		NextDeadline:     nextDeadline,
		ValueSizes:       e.valueSizeStats(),
	}
	return db.DatabaseInfo{
		SizeBytes:         keys * 64,
		DbType:            db.ImplCoreKV,
		SupportedFeatures: featureList(e.supportedFeatures()),
		Metadata:          meta,
	}
}

// valueSizeStats derives distribution stats for string values tracked by
// sizes using the same percentile estimator GetInfo's sibling engines can
// use to report value-size characteristics without a full scan.
func (e *Engine) valueSizeStats() util.Stats {
	if e.sizes.GetCount() == 0 {
		return util.Stats{}
	}
	return util.Stats{
		Min:  float64(e.sizes.GetPercentileEstimate(0)),
		Max:  float64(e.sizes.GetPercentileEstimate(100)),
		Mean: float64(e.sizes.AverageSize()),
	}
}

func featureList(f db.Feature) []db.Feature {
	var out []db.Feature
	for bit := db.Feature(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == bit {
			out = append(out, bit)
		}
	}
	return out
}

func (e *Engine) SetWriteIdx(index uint64) {
	if index > e.writeIdx {
		e.writeIdx = index
	}
}

func (e *Engine) WriteIdx() uint64 { return e.writeIdx }

func (e *Engine) Close() error {
	e.reclaim.Close()
	return nil
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// Save writes every live string key to w. List and hash values are not
// part of the persisted snapshot; durability for those is expected to come
// from the command log each server proxies through, not from this
// point-in-time dump.
func (e *Engine) Save(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	type saved struct {
		key      string
		value    []byte
		deadline uint64
	}
	var entries []saved
	e.keyspace.ForEachKey(func(key string, v *keyspace.Value) {
		if v.Kind != keyspace.KindString {
			return
		}
		deadline, _ := e.deadlines.GetPriority(key)
		entries = append(entries, saved{key: key, value: v.Str, deadline: deadline})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(engineVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, e.writeIdx); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}
	for _, s := range entries {
		if err := writeLenPrefixed(bw, []byte(s.key)); err != nil {
			return err
		}
		if err := writeLenPrefixed(bw, s.value); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, s.deadline); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load replaces the engine's string keyspace with the contents of r. List
// and hash keys set before Load is called are left untouched.
func (e *Engine) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)

	magic := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magic); err != nil {
		return err
	}
	if string(magic) != magicNum {
		return fmt.Errorf("corekv: invalid snapshot magic number")
	}
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != engineVersion {
		return fmt.Errorf("corekv: unsupported snapshot version %d", version)
	}
	var writeIdx uint64
	if err := binary.Read(br, binary.LittleEndian, &writeIdx); err != nil {
		return err
	}
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	for i := uint64(0); i < count; i++ {
		key, err := readLenPrefixed(br)
		if err != nil {
			return err
		}
		value, err := readLenPrefixed(br)
		if err != nil {
			return err
		}
		var deadline uint64
		if err := binary.Read(br, binary.LittleEndian, &deadline); err != nil {
			return err
		}
		e.keyspace.Set(string(key), &keyspace.Value{Kind: keyspace.KindString, Str: value})
		e.sizes.AddSample(len(value))
		if deadline != 0 {
			e.deadlines.AddItem(string(key), deadline)
			e.keyspace.Expire(string(key), int64(deadline))
		}
	}
	e.SetWriteIdx(writeIdx)
	return nil
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
