// Package generator stages petrel's file writes as operations, previews them
// as diffs and commits them all-or-nothing.
//
// Operations are validated first. A dry run only describes them. A real run
// commits them through a Transaction, which restores every file it touched
// when a later write fails.
package generator
