package chase

import (
	"fmt"

	"github.com/datalogplus/pie/errs"
)

// errUnsupportedRuleBody mirrors grd's own fragment restriction: the
// chase's delta-aware trigger computers (restricted, semi-naive,
// two-steps) need to see a rule body as a plain conjunction of (possibly
// negated) atoms to split it into per-atom delta joins. Rules accepted by
// pie.IsExistentialRule/IsDisjunctiveExistentialRule are always in this
// fragment, so this only fires on a caller-constructed rule that skipped
// validation.
var errUnsupportedRuleBody = fmt.Errorf("pie/chase: rule body is not a plain conjunction of (possibly negated) atoms: %w", errs.ErrValidation)

// errNoSources describes a chase Config that names no data sources at all
// (not even the fact base being saturated). Run does not check for that
// case and never returns it.
var errNoSources = fmt.Errorf("pie/chase: no sources configured: %w", errs.ErrValidation)
