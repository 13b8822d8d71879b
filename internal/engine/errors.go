package engine

import "errors"

var (
	// ErrNoDatabase is returned when no source database can be located.
	// Fatal for the run.
	ErrNoDatabase = errors.New("no source database found")

	// ErrTargetExists is returned when the target store already exists and
	// overwriting was not requested.
	ErrTargetExists = errors.New("target database already exists")
)
