package bom

import (
	"errors"

	"github.com/jhoicas/stockledger/internal/domain"
)

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
