package domain

import (
	"errors"
	"fmt"
)

// ErrMissingRoot is returned when a payload lacks the main package.
// Callers treat it as "no data" and render the empty tree.
var ErrMissingRoot = errors.New("log tree has no main package")

// ErrInvalidPayload is returned when a payload is not a JSON document.
var ErrInvalidPayload = errors.New("invalid log tree payload")

// ErrRunNotFound is returned when a source has no log tree for a run.
var ErrRunNotFound = errors.New("run not found")

// ErrNodeNotFound is returned when a node id is not part of a tree.
var ErrNodeNotFound = errors.New("node not found")

// ErrCacheMiss is returned by caches when no entry exists for a run.
var ErrCacheMiss = errors.New("cache miss")

// ErrUpstream is returned when the upstream API cannot serve a request.
var ErrUpstream = errors.New("upstream unavailable")

// ErrLockAcquire is returned when a run lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire run lock")

// Issue describes a malformed subtree that was skipped during decoding.
type Issue struct {
	// Location is the position of the node in the normalized payload,
	// e.g. "mainPackage.children[2]".
	Location string `json:"location"`
	NodeID   *int64 `json:"nodeId,omitempty"`
	Reason   string `json:"reason"`
}

func (i Issue) String() string {
	if i.NodeID != nil {
		return fmt.Sprintf("%s (id %d): %s", i.Location, *i.NodeID, i.Reason)
	}
	return fmt.Sprintf("%s: %s", i.Location, i.Reason)
}
