package importer

import "errors"

// Sentinel error kinds returned by Discover and Load. Match with errors.Is.
var (
	ErrPathNotFound    = errors.New("path not found")
	ErrNoMatchingFiles = errors.New("no matching files")
	ErrSingleFileOnly  = errors.New("single file only")
	ErrEmptyData       = errors.New("empty data")
)

// DirError reports a discovery failure for a directory.
type DirError struct {
	Kind error
	Dir  string
}

func (e *DirError) Error() string {
	switch e.Kind {
	case ErrPathNotFound:
		return "Wrong path " + e.Dir
	case ErrNoMatchingFiles:
		return "There are no files in " + e.Dir
	case ErrSingleFileOnly:
		return "There is only one file in " + e.Dir + ". Program stops"
	default:
		return e.Kind.Error() + ": " + e.Dir
	}
}

// Is implements errors.Is support.
func (e *DirError) Is(target error) bool {
	return target == e.Kind
}

// emptyDataError is returned when every matched file is empty.
type emptyDataError struct{}

func (emptyDataError) Error() string       { return "Files are empty. Program stops." }
func (emptyDataError) Is(target error) bool { return target == ErrEmptyData }
