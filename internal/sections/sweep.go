package sections

import (
	"fmt"

	"github.com/chwa/psfdata/internal/cursor"
	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/types"
)

// SweepSection names the single independent variable a swept simulation
// iterates over (spec §4.4). The format allows for more than one top-level
// element here, but every file observed in practice carries exactly one; a
// second one is rejected as UnsupportedSweep rather than silently ignored.
type SweepSection struct {
	Signal *types.SignalDef
}

// ReadSweepSection decodes a Sweep section starting at c, resolving type
// references against typedefs (the preceding Type section's output).
func ReadSweepSection(c *cursor.Cursor, typedefs map[int32]*types.TypeDef) (*SweepSection, *cursor.Cursor, error) {
	_, body, tail, err := openSection(c)
	if err != nil {
		return nil, nil, err
	}

	var sweep *SweepSection
	for {
		done, err := atRunEnd(body)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}

		el, err := types.ReadSignalOrGroup(body, typedefs)
		if err != nil {
			return nil, nil, err
		}
		if el.IsGroup() {
			return nil, nil, errs.New(errs.UnsupportedSweep, body.AbsPos(),
				fmt.Errorf("sweep element %q is a group", el.Name()))
		}
		if sweep != nil {
			return nil, nil, errs.New(errs.UnsupportedSweep, body.AbsPos(),
				fmt.Errorf("more than one sweep variable (already have %q, found %q)", sweep.Signal.Name, el.Signal.Name))
		}
		sweep = &SweepSection{Signal: el.Signal}
	}

	if sweep == nil {
		return nil, nil, errs.New(errs.UnsupportedSweep, body.AbsPos(), fmt.Errorf("sweep section has no sweep variable"))
	}
	return sweep, tail, nil
}
