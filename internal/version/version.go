package version

const (
	AppName    = "Tunebox"
	AppVersion = "0.3.0"
)
