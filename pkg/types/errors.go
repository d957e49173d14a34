package types

import (
	"errors"
	"fmt"
)

// Error classes. Every domain error wraps exactly one of these so callers
// can classify with errors.Is without matching message text.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrDeadlinePassed  = errors.New("submission deadline has passed")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrProcurementNotFound = fmt.Errorf("procurement %w", ErrNotFound)
	ErrContractorNotFound  = fmt.Errorf("contractor %w", ErrNotFound)
	ErrBidNotFound         = fmt.Errorf("bid %w", ErrNotFound)
	ErrDocumentNotFound    = fmt.Errorf("document %w", ErrNotFound)
)

var (
	ErrDuplicateReferenceNo  = fmt.Errorf("%w: reference number already exists", ErrConflict)
	ErrDuplicateContractorNo = fmt.Errorf("%w: contractor number already exists", ErrConflict)
	ErrDuplicateBid          = fmt.Errorf("%w: a bid for this procurement and contractor already exists", ErrConflict)
	ErrAnotherBidAwarded     = fmt.Errorf("%w: another bid is already awarded for this procurement", ErrConflict)
)
