// Package executor defines the capability the worker pool calls to run a
// task out-of-process, a registry that resolves an executor per task kind,
// and the two reference implementations: Python scripts and base64-encoded
// binaries.
package executor
