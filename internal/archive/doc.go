// Package archive exports environment trees as zip files. Scanning offers
// two symlink behaviors: preserve (symlinks become symlink entries and are
// never descended into) and follow (symlinks are archived as the files or
// directories they point at).
package archive
