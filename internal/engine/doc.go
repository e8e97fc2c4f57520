// Package engine provides the asynchronous task execution engine. Submitted
// tasks are recorded in the status store as waiting, handed to a fixed pool
// of workers through an unbounded queue, executed by the executor registered
// for their kind, and their outcome written back to the store.
package engine
