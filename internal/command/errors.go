package command

import "fmt"

// UnknownCommandError is returned when no command matches, or the source is
// not permitted to see the one that does.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// AlreadyRegisteredError is returned when a name is registered twice.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}
