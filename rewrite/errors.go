package rewrite

import (
	"fmt"

	"github.com/datalogplus/pie/errs"
)

var errNotPlainCQ = fmt.Errorf("pie/rewrite: formula is not a plain conjunction of atoms: %w", errs.ErrValidation)
