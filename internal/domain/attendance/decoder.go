package attendance

import (
	"errors"
	"fmt"
	"strconv"
)

// Two historical layouts exist for the attendance and mood trees:
//
//	{playerID: {name, status}}        (current, id-keyed)
//	{playerName: {steamId, status}}   (legacy, name-keyed)
//
// Both canonicalize to the id-keyed Entry shape. Each known layout has its
// own decode function; they are tried in fixed priority order per entry, so
// a tree may even mix layouts. Entries matching neither layout are dropped
// and counted; decoding never fails as a whole because of one bad record.

// ErrUnknownShape marks an entry that matched no known layout.
var ErrUnknownShape = errors.New("entry matches no known shape")

type rawEntry struct {
	key   string
	value map[string]any
}

type decodeFunc func(rawEntry) (Entry, error)

// decodeNameKeyed handles the legacy {playerName: {steamId, status}} layout.
func decodeNameKeyed(e rawEntry) (Entry, error) {
	id, ok := stringField(e.value, "steamId")
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", e.key, ErrUnknownShape)
	}
	status, ok := stringField(e.value, "status")
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", e.key, ErrUnknownShape)
	}
	return Entry{PlayerID: id, Name: e.key, Status: State(status)}, nil
}

// decodeIDKeyed handles the current {playerID: {name, status}} layout.
func decodeIDKeyed(e rawEntry) (Entry, error) {
	name, ok := stringField(e.value, "name")
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", e.key, ErrUnknownShape)
	}
	status, ok := stringField(e.value, "status")
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", e.key, ErrUnknownShape)
	}
	return Entry{PlayerID: e.key, Name: name, Status: State(status)}, nil
}

var decoders = []decodeFunc{decodeNameKeyed, decodeIDKeyed}

// DecodeState canonicalizes a raw attendance snapshot. Returns the id-keyed
// entries plus the number of entries dropped for matching no known shape.
func DecodeState(raw map[string]any) (map[string]Entry, int) {
	out := make(map[string]Entry, len(raw))
	dropped := 0
	for key, v := range raw {
		value, ok := v.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		entry, err := decodeEntry(rawEntry{key: key, value: value})
		if err != nil {
			dropped++
			continue
		}
		out[entry.PlayerID] = entry
	}
	return out, dropped
}

// DecodeMoods canonicalizes a raw mood snapshot with the same shape rules.
func DecodeMoods(raw map[string]any) (map[string]MoodEntry, int) {
	entries, dropped := DecodeState(raw)
	out := make(map[string]MoodEntry, len(entries))
	for id, e := range entries {
		out[id] = MoodEntry{PlayerID: id, Name: e.Name, Status: Mood(e.Status)}
	}
	return out, dropped
}

func decodeEntry(e rawEntry) (Entry, error) {
	var lastErr error
	for _, decode := range decoders {
		entry, err := decode(e)
		if err == nil {
			return entry, nil
		}
		lastErr = err
	}
	return Entry{}, lastErr
}

// stringField extracts a non-empty string field, stringifying numeric ids
// the way the legacy data sometimes stored them.
func stringField(m map[string]any, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
