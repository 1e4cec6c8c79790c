package sections

import (
	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/types"
)

// TypeSection owns every TypeDef declared in the file, keyed by id, plus
// the trailing id->offset index (spec §4.4).
type TypeSection struct {
	Defs  map[int32]*types.TypeDef
	index *typeIndex
}

// ReadTypeSection decodes a Type section starting at c.
func ReadTypeSection(c *cursor.Cursor) (*TypeSection, *cursor.Cursor, error) {
	_, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}

	data, indexData, err := splitAtSubsectionIndex(body)
	if err != nil {
		return nil, nil, err
	}

	defs := make(map[int32]*types.TypeDef)
	for {
		done, err := atRunEnd(data)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
		td, err := types.ReadTypeDef(data)
		if err != nil {
			return nil, nil, err
		}
		defs[td.ID] = td
	}

	idx, err := readTypeIndex(indexData)
	if err != nil {
		return nil, nil, err
	}

	return &TypeSection{Defs: defs, index: idx}, tail, nil
}
