package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/damonswayn/agentconfig/pkg/errors"
)

// errDrift signals that status found at least one target that is not ok.
// It maps to exit code 1 without an error message.
var errDrift = stderrors.New("drift detected")

// Exit codes by error kind. Drift from `status` exits 1 like a plain
// failure, but silently.
const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
	exitConflict   = 3
	exitFilesystem = 4
)

func main() {
	err := Execute()
	if err == nil {
		os.Exit(exitOK)
	}
	if stderrors.Is(err, errDrift) {
		os.Exit(exitError)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err))
	switch errors.KindOf(err) {
	case errors.KindValidation:
		os.Exit(exitValidation)
	case errors.KindConflict:
		os.Exit(exitConflict)
	case errors.KindFilesystem:
		os.Exit(exitFilesystem)
	default:
		os.Exit(exitError)
	}
}

func formatError(err error) string {
	var serr *errors.SyncError
	if stderrors.As(err, &serr) && len(serr.Details) > 0 {
		var parts []string
		for k, v := range serr.Details {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		return fmt.Sprintf("%s (%s)", serr.Message, strings.Join(parts, ", "))
	}
	return err.Error()
}

func processEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}
