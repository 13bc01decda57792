package version

const (
	AppName     = "TempTTS"
	AppVersion  = "0.1.0"
	AppFullName = AppName + " v" + AppVersion
)
