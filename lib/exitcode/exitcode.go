// Package exitcode exports tbfs's exit status numbers.
package exitcode

const (
	// Success is returned when tbfs finished without error.
	Success = iota
	// UsageError is returned when there was a syntax or usage error in the arguments.
	UsageError
	// UncategorizedError is returned for any error not categorised otherwise.
	UncategorizedError
	// DirNotFound is returned when a source or destination directory is not found.
	DirNotFound
	// CommandError is returned when a spawned cluster tool exited with an error.
	CommandError
)
