// Package aggregates holds the error taxonomy and write contracts shared by
// every journey write path. It has no storage or transport imports.
package aggregates
