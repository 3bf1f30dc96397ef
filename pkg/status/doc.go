// Package status compares the current filesystem state of every
// previously-synced target against the persisted snapshot and classifies
// each as ok, drifted, or missing. It reads only the state store and the
// filesystem probe; it never mutates anything.
package status
