package store

import domainerrors "github.com/animerec/animerec-server/internal/errors"

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = domainerrors.NotFound("session not found or expired")
