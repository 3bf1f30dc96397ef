package main

// Short messages (one-liners)
const (
	MsgRootShort = "Sync agent configuration files across coding-assistant tools"
	MsgRootLong = `agentconfig keeps one canonical tree of agent instructions, rules and
skills in sync with the configuration locations of multiple coding-assistant
tools, using symlinks where possible and copies otherwise, and tracks drift
between what was synced and what is on disk now.`

	MsgSyncShort   = "Sync the source tree into every configured agent location"
	MsgStatusShort = "Show drift for previously-synced targets"
	MsgInitShort   = "Write a starter agentconfig.yaml into the source root"

	MsgDryRunNotice = "DRY RUN MODE - no changes were made"
)
