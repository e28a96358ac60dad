// Package config loads YAML configuration files and merges them into declared
// argument groups. File values fill in only fields that still hold their
// compile-time default, so an explicit CLI override always wins over the file.
// An optional `env` mapping in the file is exported into the process
// environment before the trainer is launched.
package config
