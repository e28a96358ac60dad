// Package parser resolves the final settings for a trainer invocation. It
// locates the single argument group carrying the --config flag, loads the
// file, exports its env block, merges file values into every group, and runs
// the post-processing steps that tie groups together. It keeps the main
// package focused on flag registration and orchestration.
package parser
