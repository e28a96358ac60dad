package config

import "errors"

var (
	// ErrEnvNotMapping is returned when the `env` key of the config file holds
	// anything other than a mapping of variable names to values.
	ErrEnvNotMapping = errors.New("`env` field must be a mapping in the YAML file")
	// ErrNotStructPointer is returned when a merge target is not a pointer to a
	// struct.
	ErrNotStructPointer = errors.New("merge target must be a pointer to a struct")
	// ErrDefaultsMismatch is returned when the defaults instance is not the same
	// concrete type as the merge target.
	ErrDefaultsMismatch = errors.New("defaults must be the same concrete type as the merge target")
)
