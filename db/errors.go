package db

import (
	"fmt"
)

// InvalidLocatorError means a locator sequence does not fit the schema
// chain of the node it was given to. It is always a caller bug.
type InvalidLocatorError struct {
	Node   string
	Locs   Locs
	Reason string
}

func (e *InvalidLocatorError) Error() string {
	return fmt.Sprintf("invalid locators %s for %s: %s", e.Locs, e.Node, e.Reason)
}

// NotFoundError is returned when a directory or artifact file is absent.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// CorruptArtifactError is returned when stored bytes do not parse.
type CorruptArtifactError struct {
	Path string
	Err  error
}

func (e *CorruptArtifactError) Error() string {
	return fmt.Sprintf("corrupt artifact %s: %v", e.Path, e.Err)
}

func (e *CorruptArtifactError) Unwrap() error {
	return e.Err
}

// UnsupportedOperationError is returned for operations a node or file
// kind forbids, e.g. removing a randomly-addressed node.
type UnsupportedOperationError struct {
	Op   string
	Node string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s not supported for %s", e.Op, e.Node)
}

type ExistsError struct {
	Dir string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("directory not empty: %s", e.Dir)
}

type NotDbError struct {
	Dir string
}

func (e *NotDbError) Error() string {
	return fmt.Sprintf("not a database: %s", e.Dir)
}
