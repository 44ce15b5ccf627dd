// Package catalog provides a wrapper around the Nix CLI commands used by
// clannad. It resolves catalog refs to immutable revisions, queries package
// versions, and realizes packages into the store without depending on other
// internal packages. All dependency resolution and building happens inside
// the external tool; this package only drives it and reports its failures.
package catalog
