//go:build !linux && !windows

package sandbox

var hostPlatform = Platform{}
