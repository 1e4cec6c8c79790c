package sections

import (
	"strings"

	"github.com/chwa/psfdata/internal/cursor"
)

// typeIndex is the trailing id->offset table of a Type section. It is not
// needed for decoding but must parse cleanly (spec §4.4).
type typeIndex struct {
	entries map[int32]int32
}

func readTypeIndex(c *cursor.Cursor) (*typeIndex, error) {
	tag, err := c.ReadInt32()
	if err != nil {
		return nil, classify(c, "reading type index tag", err)
	}
	if tag != tagIndex {
		return nil, classify(c, "reading type index", errUnexpectedTag(tagIndex, tag))
	}

	size, err := c.ReadInt32()
	if err != nil {
		return nil, classify(c, "reading type index size", err)
	}
	end := c.AbsPos() + int64(size)

	idx := &typeIndex{entries: make(map[int32]int32)}
	for c.AbsPos() < end {
		id, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading type index entry id", err)
		}
		pos, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading type index entry offset", err)
		}
		idx.entries[id] = pos
	}
	return idx, nil
}

// TraceIndexEntry is one record of a TraceIndex: an absolute offset plus
// the two "extra" fields whose meaning is undocumented (spec §9 open
// question) but which are preserved verbatim.
type TraceIndexEntry struct {
	Offset int32
	Extra1 int32
	Extra2 int32
}

// TraceIndex maps a trace's 4-character ASCII id to every offset recorded
// for it; the reference format allows the same id to repeat, so each name
// maps to a slice rather than a single offset (spec §4.4).
type TraceIndex struct {
	Entries map[string][]TraceIndexEntry
}

func readTraceIndex(c *cursor.Cursor) (*TraceIndex, error) {
	tag, err := c.ReadInt32()
	if err != nil {
		return nil, classify(c, "reading trace index tag", err)
	}
	if tag != tagIndex {
		return nil, classify(c, "reading trace index", errUnexpectedTag(tagIndex, tag))
	}

	size, err := c.ReadInt32()
	if err != nil {
		return nil, classify(c, "reading trace index size", err)
	}
	end := c.AbsPos() + int64(size)

	ti := &TraceIndex{Entries: make(map[string][]TraceIndexEntry)}
	for c.AbsPos() < end {
		idBytes, err := c.ReadBytes(4)
		if err != nil {
			return nil, classify(c, "reading trace index entry id", err)
		}
		id := strings.TrimRight(string(idBytes), "\x00")

		offset, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading trace index entry offset", err)
		}
		extra1, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading trace index entry extra1", err)
		}
		extra2, err := c.ReadInt32()
		if err != nil {
			return nil, classify(c, "reading trace index entry extra2", err)
		}

		if id == "" {
			continue // most entries are empty
		}
		ti.Entries[id] = append(ti.Entries[id], TraceIndexEntry{Offset: offset, Extra1: extra1, Extra2: extra2})
	}
	return ti, nil
}
