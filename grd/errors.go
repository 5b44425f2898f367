package grd

import (
	"fmt"

	"github.com/datalogplus/pie/errs"
)

var errUnsupportedRuleBody = fmt.Errorf("pie/grd: rule body is not a plain conjunction of (possibly negated) atoms: %w", errs.ErrValidation)
