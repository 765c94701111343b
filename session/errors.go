package session

import "errors"

// Session errors. Artifact errors come from the romloader package and are
// wrapped unchanged, so errors.Is works against romloader.ErrSizeMismatch
// and friends.
var (
	ErrEncode             = errors.New("savestate encode failed")
	ErrDecode             = errors.New("savestate decode failed")
	ErrHostRejectedFormat = errors.New("host rejected pixel format")
	ErrBCDRange           = errors.New("value out of BCD range")
)
