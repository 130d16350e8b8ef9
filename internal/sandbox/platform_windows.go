package sandbox

var hostPlatform = Platform{
	DevicePrefix: `\\.\`,
}
