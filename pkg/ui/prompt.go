package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// IsInteractive reports whether the process can prompt the operator:
// stdin and stdout must both be terminals and the terminal must not be
// dumb.
func IsInteractive() bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii || os.Getenv("TERM") != "dumb"
}

// Prompt choices, including the apply-to-all variants that fix the
// answer as the policy for every remaining conflict in the run.
const (
	choiceOverwrite    = "overwrite"
	choiceBackup       = "backup, then overwrite"
	choiceSkip         = "skip"
	choiceCancel       = "cancel the run"
	choiceOverwriteAll = "overwrite this and all remaining"
	choiceBackupAll    = "backup this and all remaining"
	choiceSkipAll      = "skip this and all remaining"
)

// NewInteractiveResolver returns a conflict resolver that prompts on the
// terminal. The prompt blocks until the operator answers; there is no
// timeout.
func NewInteractiveResolver() types.ConflictResolver {
	return types.ConflictResolverFunc(func(m types.ResolvedMapping) (types.ConflictDecision, error) {
		pterm.Warning.Printfln("target exists and is not managed: %s", m.Target)

		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{
				choiceOverwrite,
				choiceBackup,
				choiceSkip,
				choiceCancel,
				choiceOverwriteAll,
				choiceBackupAll,
				choiceSkipAll,
			}).
			WithDefaultText("how should this conflict be handled?").
			Show()
		if err != nil {
			return types.ConflictDecision{}, errors.Wrap(err, errors.ErrConflictPrompt, "conflict prompt failed")
		}

		switch choice {
		case choiceOverwrite:
			return types.ConflictDecision{Action: types.ConflictOverwrite}, nil
		case choiceBackup:
			return types.ConflictDecision{Action: types.ConflictBackup}, nil
		case choiceSkip:
			return types.ConflictDecision{Action: types.ConflictSkip}, nil
		case choiceCancel:
			return types.ConflictDecision{Action: types.ConflictCancel}, nil
		case choiceOverwriteAll:
			return types.ConflictDecision{Action: types.ConflictOverwrite, ApplyToAll: true}, nil
		case choiceBackupAll:
			return types.ConflictDecision{Action: types.ConflictBackup, ApplyToAll: true}, nil
		case choiceSkipAll:
			return types.ConflictDecision{Action: types.ConflictSkip, ApplyToAll: true}, nil
		default:
			return types.ConflictDecision{}, errors.Newf(errors.ErrConflictPrompt, "unknown prompt choice %q", choice)
		}
	})
}
