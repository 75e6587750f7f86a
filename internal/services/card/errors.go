package card

import "errors"

// Service errors
var (
	ErrUnknownProvider   = errors.New("unknown card provider")
	ErrCardNotFound      = errors.New("card not found")
	ErrNotCardOwner      = errors.New("card belongs to another user")
	ErrCardTerminal      = errors.New("card is canceled")
	ErrInvalidStatus     = errors.New("invalid card status")
	ErrInvalidFormFactor = errors.New("invalid form factor")
	ErrNotVirtual        = errors.New("full details exist only for virtual cards")
)
