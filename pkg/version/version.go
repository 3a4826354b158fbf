// Package version carries build-time version information, injected with
// ldflags:
//
//	go build -ldflags="-X 'github.com/bitinglip/bitinglip-cli/pkg/version.version=1.2.3'"
package version

import "fmt"

var version = "dev"

// Version returns the build version string.
func Version() string {
	return version
}

// UserAgent returns the User-Agent header value sent on every gateway call.
func UserAgent() string {
	return fmt.Sprintf("bitinglip-cli/%s", version)
}
