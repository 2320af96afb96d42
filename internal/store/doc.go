// Package store defines the persistence interfaces the dispatch pipeline
// depends on, together with the sentinel errors implementations translate
// into. Concrete implementations live in internal/platform/postgres.
package store
