// Package buildinfo provides build-time properties injected via ldflags:
//
//	go build -ldflags "-X github.com/nomis52/signupd/buildinfo.version=v1.2.0 \
//	    -X github.com/nomis52/signupd/buildinfo.gitCommit=$(git rev-parse HEAD)"
package buildinfo

// Properties holds build-time properties injected via ldflags.
type Properties struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Get returns the current build properties.
func Get() Properties {
	return Properties{
		Version:   version,
		BuildTime: buildTime,
		GitCommit: gitCommit,
	}
}
