package config

// NewLoaderWithEnv creates a Loader reading overrides from env.
func NewLoaderWithEnv(env map[string]string) *Loader {
	return &Loader{getenv: func(key string) string { return env[key] }}
}
