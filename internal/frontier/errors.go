package frontier

import "errors"

// ErrNotVisited is returned when selecting the frontier of a profile that has
// no visit record. Its edges are unknown, so the call is a caller error.
var ErrNotVisited = errors.New("profile has not been visited")
