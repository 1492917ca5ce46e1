// Package quicklist implements a doubly-linked sequence of packed nodes,
// the backing representation for list values.
//
// Each node holds a run of elements packed into a single contiguous byte
// buffer (or, when an element above the plain-size threshold starts a new
// node, stands alone as a "plain" node holding just that element). The fill policy
// bounds how large a node is allowed to grow - by element count or by byte
// size - and an insert that would break the bound splits the node in two.
// A compress depth keeps the nodes nearest each end raw while compressing
// everything in between with LZ4, trading CPU for memory on long lists
// whose middle is rarely touched.
package quicklist
