// Package litterbox wraps the Litterbox analyzer jar as an executor adapter.
package litterbox
