// File: utils/constants.go
package utils

import "time"

// UserIDKey is the gin context key holding the signed-in user's ID.
const UserIDKey = "userID"

// ShutdownTimeout bounds graceful shutdown of the HTTP server and workers.
const ShutdownTimeout = 10 * time.Second
