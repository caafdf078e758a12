package config

const (
	defaultWindowSize            = 5
	defaultAnchorStore           = AnchorStoreSQLite
	defaultRequestTimeoutSeconds = 15
	defaultLogLevel              = "info"
	defaultLogFormat             = "text"
)

var defaultEmotions = []string{"neutral", "happy", "sad", "angry", "surprised"}

// Default returns a Config populated with the built-in defaults.
func Default(stateDir string) Config {
	emotions := make([]string, len(defaultEmotions))
	copy(emotions, defaultEmotions)
	return Config{
		StateDir:              stateDir,
		WindowSize:            defaultWindowSize,
		AnchorStore:           defaultAnchorStore,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		LogLevel:              defaultLogLevel,
		LogFormat:             defaultLogFormat,
		Emotions:              emotions,
	}
}
