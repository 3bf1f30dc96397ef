package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/damonswayn/agentconfig/pkg/config"
	"github.com/damonswayn/agentconfig/pkg/filesystem"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/status"
	"github.com/damonswayn/agentconfig/pkg/style"
	"github.com/damonswayn/agentconfig/pkg/sync"
	"github.com/damonswayn/agentconfig/pkg/types"
	"github.com/damonswayn/agentconfig/pkg/ui"
)

func newSyncCmd() *cobra.Command {
	var (
		scope       string
		projectRoot string
		mode        string
		agents      []string
		profile     string
		force       bool
		strict      bool
		dryRun      bool
		onConflict  string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: MsgSyncShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sync.Options{
				SourceRoot:  sourceRoot,
				Scope:       types.Scope(scope),
				ProjectRoot: projectRoot,
				Mode:        types.SyncMode(mode),
				Agents:      agents,
				Profile:     profile,
				Force:       force,
				Strict:      strict,
				DryRun:      dryRun,
				OnConflict:  types.ConflictAction(onConflict),
			}

			// Interactive conflict prompting only when nothing already
			// fixed the policy and a terminal is attached.
			if !force && onConflict == "" && ui.IsInteractive() {
				opts.Resolver = ui.NewInteractiveResolver()
			}

			result, err := sync.SyncConfigs(opts)
			if err != nil {
				return err
			}

			fmt.Print(style.RenderWarnings(result.Warnings))
			fmt.Print(style.RenderSyncSummary(result, dryRun))
			if dryRun {
				for _, m := range result.Planned {
					fmt.Printf("  %s: %s -> %s (%s)\n", m.Agent, m.Source, m.Target, m.Mode)
				}
				fmt.Println(MsgDryRunNotice)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "global", "Sync scope: global or project")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "Target repository root (required for project scope)")
	cmd.Flags().StringVar(&mode, "mode", "", "Sync mode: auto, link or copy (default: config)")
	cmd.Flags().StringSliceVar(&agents, "agent", nil, "Limit the sync to the named agents")
	cmd.Flags().StringVar(&profile, "profile", "", "Profile whose mappings are appended to every agent")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite pre-existing unmanaged targets without prompting")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a mapping source is missing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the plan without touching the filesystem")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "", "Fixed conflict policy: overwrite, backup, skip or cancel")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: MsgStatusShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := filesystem.NewOS()
			root := sourceRoot
			if root == "" {
				root = paths.DefaultSourceRoot(processEnv())
			}

			statuses, err := status.GetStatus(fs, root)
			if err != nil {
				return err
			}

			fmt.Print(style.RenderStatusList(statuses))
			for _, ts := range statuses {
				if ts.Status != types.StatusOK {
					return errDrift
				}
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := filesystem.NewOS()
			root := sourceRoot
			if root == "" {
				root = paths.DefaultSourceRoot(processEnv())
			}

			if err := config.WriteDefault(fs, root, force); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", paths.ConfigPath(root))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration")
	return cmd
}
