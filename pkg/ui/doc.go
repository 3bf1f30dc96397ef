// Package ui holds the terminal-facing pieces the core engine must not
// know about: TTY detection and the interactive conflict prompt, injected
// into the conflict engine as a synchronous resolver.
package ui
