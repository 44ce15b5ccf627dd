// Package lock handles parsing and writing of environment.lock.yaml files.
// Lock files pin the catalog to an immutable revision and record the exact
// package versions and store paths realized for each platform, enabling
// reproducible environments.
package lock
