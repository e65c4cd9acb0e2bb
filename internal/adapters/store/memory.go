package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Default buffer for subscriber channels. When a slow consumer falls behind
// the oldest snapshot is dropped; the latest value always gets through,
// matching last-write-wins semantics.
const defaultSubscriberBuffer = 64

// MemoryStore is an in-process Store backed by a nested map tree. It is the
// backend used in tests and single-node deployments; the interface stays
// narrow enough for a hosted tree to slot in behind it.
type MemoryStore struct {
	mu       sync.Mutex
	tree     map[string]any
	revision uint64
	subs     map[int]*subscriber
	nextSub  int
	closed   bool

	bufferSize int
}

type subscriber struct {
	path string
	ch   chan Snapshot
	ctx  context.Context
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithSubscriberBuffer sets the per-subscriber channel buffer.
func WithSubscriberBuffer(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// NewMemoryStore creates an empty in-memory state tree.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		tree:       make(map[string]any),
		subs:       make(map[int]*subscriber),
		bufferSize: defaultSubscriberBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a value listener on path.
func (s *MemoryStore) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	sub := &subscriber{
		path: strings.Join(segments, "/"),
		ch:   make(chan Snapshot, s.bufferSize),
		ctx:  ctx,
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub

	// Value listeners fire immediately with the current state.
	sub.ch <- Snapshot{
		Path:     sub.path,
		Value:    copyValue(getPath(s.tree, segments)),
		Revision: s.revision,
		OpID:     "",
	}
	return sub.ch, nil
}

// ReadOnce returns the current value at path.
func (s *MemoryStore) ReadOnce(_ context.Context, path string) (any, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return copyValue(getPath(s.tree, segments)), nil
}

// Set replaces the value at path.
func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

// Update applies a multi-path patch atomically.
func (s *MemoryStore) Update(_ context.Context, patch map[string]any) error {
	// Validate every path and value up front so a bad entry rejects the
	// whole batch before anything mutates.
	parsed := make(map[string][]string, len(patch))
	values := make(map[string]any, len(patch))
	for path, value := range patch {
		segments, err := splitPath(path)
		if err != nil {
			return fmt.Errorf("update %q: %w", path, err)
		}
		parsed[path] = segments
		if value != nil {
			norm, err := jsonValue(value)
			if err != nil {
				return fmt.Errorf("update %q: %w", path, err)
			}
			values[path] = norm
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	changed := make([][]string, 0, len(patch))
	for path, value := range patch {
		segments := parsed[path]
		if value == nil {
			deletePath(s.tree, segments)
		} else {
			setPath(s.tree, segments, values[path])
		}
		changed = append(changed, segments)
	}

	s.revision++
	opID := uuid.NewString()
	s.notify(changed, opID)
	return nil
}

// Close tears down all subscriptions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	return nil
}

// notify delivers the value at each affected subscriber's path. Must be
// called with s.mu held.
func (s *MemoryStore) notify(changed [][]string, opID string) {
	for id, sub := range s.subs {
		if sub.ctx.Err() != nil {
			close(sub.ch)
			delete(s.subs, id)
			continue
		}
		if !anyAffects(changed, sub.path) {
			continue
		}
		snap := Snapshot{
			Path:     sub.path,
			Value:    copyValue(getPath(s.tree, strings.Split(sub.path, "/"))),
			Revision: s.revision,
			OpID:     opID,
		}
		for {
			select {
			case sub.ch <- snap:
			default:
				// Full buffer: drop the oldest so the latest wins.
				select {
				case <-sub.ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// anyAffects reports whether any changed path overlaps the subscribed path
// (either is a prefix of the other).
func anyAffects(changed [][]string, subPath string) bool {
	subSegments := strings.Split(subPath, "/")
	for _, c := range changed {
		if isPrefix(c, subSegments) || isPrefix(subSegments, c) {
			return true
		}
	}
	return false
}

func isPrefix(prefix, full []string) bool {
	if len(prefix) > len(full) {
		return false
	}
	for i, seg := range prefix {
		if full[i] != seg {
			return false
		}
	}
	return true
}

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, ErrInvalidPath
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, ErrInvalidPath
		}
	}
	return segments, nil
}

func getPath(tree map[string]any, segments []string) any {
	var cur any = tree
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

func setPath(tree map[string]any, segments []string, value any) {
	cur := tree
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
}

func deletePath(tree map[string]any, segments []string) {
	cur := tree
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, segments[len(segments)-1])
}

// jsonValue canonicalizes an arbitrary value into JSON shape (maps, slices,
// float64, string, bool) so the tree always holds what a remote backend
// would hold. Typed structs round-trip through their JSON encoding.
func jsonValue(v any) (any, error) {
	switch v.(type) {
	case bool, string, float64:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// copyValue deep-copies JSON-shaped values so callers never share tree memory.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = copyValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = copyValue(vv)
		}
		return out
	default:
		return v
	}
}
