package trading

import "errors"

// Business-rule errors. Handlers map these onto user-facing pages;
// anything else coming out of the service is treated as internal.
var (
	ErrInvalidShares      = errors.New("trading: share count must be a positive integer")
	ErrInsufficientFunds  = errors.New("trading: not enough cash")
	ErrInsufficientShares = errors.New("trading: not enough shares held")
	ErrUsernameTaken      = errors.New("trading: username not available")
	ErrInvalidCredentials = errors.New("trading: invalid username or password")
)
