// Package sync implements the core engine: mapping resolution, the
// per-run conflict state machine, and the apply step that materializes
// each mapping as a symlink or a copy. Mappings are processed strictly in
// resolution order so conflict decisions and warnings are deterministic.
// The engine never logs to the user; it returns structured results and
// warning strings and leaves terminal reporting to the CLI.
package sync
