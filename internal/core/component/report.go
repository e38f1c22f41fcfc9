package component

import (
	"errors"
	"fmt"
)

// FileError records a catalog file that could not be used.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e FileError) Unwrap() error { return e.Err }

// LoadReport summarises one Load call. Failures never abort the load.
type LoadReport struct {
	Folders        []string
	MissingFolders []string
	Files          int
	Merged         int
	Overridden     int
	Failed         []FileError
}

// Err joins every file failure, or returns nil when all files were usable.
func (r LoadReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}
