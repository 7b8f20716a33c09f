// Package types defines the Book record, the LocalStore interface, the
// store configuration, and the standard error values shared by the
// inventory, its storage backends, and its callers.
package types
