// Package project integrates manifest and lock loading with path resolution.
// It provides the Context type that holds the resolved project paths, the
// loaded environment descriptor, and the lock file when one exists.
package project
