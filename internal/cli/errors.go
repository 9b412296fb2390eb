package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type alreadyExistsError struct {
	kind string
	id   string
}

func (e alreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.kind, e.id)
}

func errAlreadyExists(kind, id string) error {
	return alreadyExistsError{kind: kind, id: id}
}

// actionError is a failed controller action; the message is the same text the
// dashboard would show.
type actionError struct {
	message string
}

func (e actionError) Error() string { return e.message }
