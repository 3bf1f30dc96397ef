package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/damonswayn/agentconfig/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/damonswayn/agentconfig/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/damonswayn/agentconfig/internal/version.Date={{.Date}}
)
