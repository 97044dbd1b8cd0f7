package database

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// CommandError describes a database command the server rejected.
type CommandError struct {
	Code    int32
	Message string
}

// Error implements the error interface
func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with code %d: %s", e.Code, e.Message)
}

// AsCommandError extracts a CommandError from an error chain.
func AsCommandError(err error) (*CommandError, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// translateError converts driver errors into database package errors.
// Anything that is not a server command failure passes through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return &CommandError{Code: ce.Code, Message: ce.Message}
	}

	return err
}
