// Package filesystem provides the OS implementation of types.FS and the
// probe used to classify and fingerprint sync targets.
package filesystem
