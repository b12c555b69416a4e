package tree

import "fmt"

// DuplicateKeyError reports an attempt to insert an object key twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate object key %q", e.Key)
}
