// Package types defines the shared domain types for agentconfig: mapping
// configuration, resolved sync plans, conflict decisions, run results, and
// the filesystem interface the engines operate against.
package types
