package plugindex

import "fmt"

// QueryError is the single error kind every engine-boundary failure is
// re-raised as. It carries the operation name and wraps the underlying cause;
// no partial results accompany it and no retries are attempted.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution failed in %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
