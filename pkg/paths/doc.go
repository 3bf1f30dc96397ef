// Package paths provides centralized path handling for agentconfig:
// placeholder expansion for configured roots, resolution of mapping entries
// against source and target roots, and the fixed on-disk locations of the
// configuration file, state snapshot and backup tree.
package paths
