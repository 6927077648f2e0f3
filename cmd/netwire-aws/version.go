package main

import "runtime/debug"

// version is stamped by release builds:
//
//	go build -ldflags "-X main.version=v1.2.0"
var version = ""

// getVersion reports the binary version: the ldflags stamp when present,
// the module version from build info for `go install @version` builds,
// and "dev" for everything else.
func getVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}

	return "dev"
}
