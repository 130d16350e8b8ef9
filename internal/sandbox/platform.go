package sandbox

import (
	"path/filepath"
	"strings"
)

// Platform captures how the host filesystem needs paths prepared before the
// native open call. The value for the running OS is chosen at build time and
// the Accessor consults it; call sites never branch on runtime.GOOS.
type Platform struct {
	// DevicePrefix marks raw device paths (e.g. `\\.\PhysicalDrive0`) that
	// are opened exactly as given. Empty when the platform has none.
	DevicePrefix string

	// NativeResolve is true when the native open call already follows every
	// symlink, so canonicalizing first adds nothing.
	NativeResolve bool

	// VirtualRoots are pseudo filesystems whose entries are synthesized and
	// must always be canonicalized, even when NativeResolve is set.
	VirtualRoots []string
}

// HostPlatform returns the Platform of the running operating system.
func HostPlatform() Platform {
	return hostPlatform
}

// IsDevicePath reports whether path names a raw device. Device paths carry the
// prefix and no drive-letter style component.
func (p Platform) IsDevicePath(path string) bool {
	return p.DevicePrefix != "" &&
		strings.HasPrefix(path, p.DevicePrefix) &&
		!strings.Contains(path, ":")
}

// NeedsCanonicalization reports whether an absolute, normalized path must be
// resolved through the Canonicalizer before opening.
func (p Platform) NeedsCanonicalization(path string) bool {
	if !p.NativeResolve {
		return true
	}
	for _, root := range p.VirtualRoots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
