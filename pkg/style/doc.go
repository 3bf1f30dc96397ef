// Package style renders sync results and drift reports for the terminal.
package style
