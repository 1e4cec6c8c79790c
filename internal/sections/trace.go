package sections

import (
	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/types"
)

// TraceSection lists the signals and signal groups the simulator recorded,
// in declaration order, plus the trailing offset index (spec §4.4).
//
// ByName is flattened exactly one level: a group's direct children are
// reachable by name, but the group itself is not (mirroring the reference
// decoder's traces_by_name, which never nests).
type TraceSection struct {
	Elements []*types.Element
	ByName   map[string]*types.SignalDef
	Index    *TraceIndex
}

// ReadTraceSection decodes a Trace section starting at c, resolving type
// references against typedefs (the preceding Type section's output).
func ReadTraceSection(c *cursor.Cursor, typedefs map[int32]*types.TypeDef) (*TraceSection, *cursor.Cursor, error) {
	_, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}

	data, indexData, err := splitAtSubsectionIndex(body)
	if err != nil {
		return nil, nil, err
	}

	var elements []*types.Element
	for {
		done, err := atRunEnd(data)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
		el, err := types.ReadSignalOrGroup(data, typedefs)
		if err != nil {
			return nil, nil, err
		}
		elements = append(elements, el)
	}

	index, err := readTraceIndex(indexData)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[string]*types.SignalDef)
	for _, sig := range flattenTraces(elements) {
		byName[sig.Name] = sig
	}

	return &TraceSection{Elements: elements, ByName: byName, Index: index}, tail, nil
}

// flattenTraces expands every group into its direct children, yielding a
// flat, declaration-ordered list of signals (mirrors the reference
// decoder's flattened() generator).
func flattenTraces(elements []*types.Element) []*types.SignalDef {
	var out []*types.SignalDef
	for _, el := range elements {
		if el.IsGroup() {
			out = append(out, el.Group.Children...)
		} else {
			out = append(out, el.Signal)
		}
	}
	return out
}

// Flattened returns every signal in t, with group members expanded, in
// declaration order.
func (t *TraceSection) Flattened() []*types.SignalDef {
	return flattenTraces(t.Elements)
}
