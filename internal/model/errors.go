package model

import "fmt"

// DataSourceError reports a required input file that is missing, unreadable
// or not shaped as expected. It aborts pipeline construction.
type DataSourceError struct {
	Op   string // "read", "decode", ...
	Path string
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NotFoundError reports that no catalog match pairs the two teams.
type NotFoundError struct {
	TeamA, TeamB string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no match found between %q and %q", e.TeamA, e.TeamB)
}
