// Package progress persists how far typing got for each text, so a later
// run can resume where the last one stopped. Snapshots are YAML documents
// compressed with zstd, one file per text.
package progress
