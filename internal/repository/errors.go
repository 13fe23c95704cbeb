// Package repository holds the persistence collaborators of the connection
// monitor: operator accounts, sign-in sessions and whole-dataset snapshots.
// Each concern has a MySQL implementation and a lighter one (memory or
// bbolt) selected by STORAGE_DRIVER.
//
// Sentinel errors let the auth service and handlers tell a missing record
// from an infrastructure failure.
package repository

import "errors"

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrSessionNotFound)
}
