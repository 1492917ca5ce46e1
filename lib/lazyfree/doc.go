// Package lazyfree implements deferred reclamation of values whose
// destruction is too expensive to pay for on the single command thread:
// past a configurable effort threshold, a deleted value is handed off to
// a small pool of background workers instead of being freed inline.
package lazyfree
