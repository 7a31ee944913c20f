package store

import "errors"

// ErrDuplicate is returned by create operations that violate a uniqueness constraint
// (user email, membership per workspace and user, identity per user and provider).
var ErrDuplicate = errors.New("store: duplicate entity")
