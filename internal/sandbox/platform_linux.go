package sandbox

var hostPlatform = Platform{
	NativeResolve: true,
	VirtualRoots:  []string{"/proc"},
}
