//go:build !(linux || darwin || freebsd || openbsd || netbsd || dragonfly || windows)

package settings

import "os"

// No advisory locking on this platform; the in-process guard still applies.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
