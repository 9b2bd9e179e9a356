package buildinfo

import "time"

// Set via -ldflags at build time
var (
	Version    = "dev"
	BuildTime  string // when the binary was compiled
	CommitTime string // last git commit time (last code edit)
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Info is the build metadata reported by the status endpoint.
type Info struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	StartTime  string `json:"start_time"`
}

func Summary() Info {
	return Info{
		Version:    Version,
		BuildTime:  BuildTime,
		CommitTime: CommitTime,
		CommitHash: CommitHash,
		StartTime:  StartTime,
	}
}
