package pricing

import "errors"

// Engine errors. Callers match them with errors.Is; the engine wraps them with
// the offending values for messaging.
var (
	ErrInvalidRange      = errors.New("invalid range: end must be after start")
	ErrInvalidRate       = errors.New("invalid rate: hourly rate cannot be negative")
	ErrInvalidExtension  = errors.New("invalid extension: new end must be after current end")
	ErrInvalidSettlement = errors.New("invalid settlement")
	ErrInvalidPolicy     = errors.New("invalid rental policy")
)
