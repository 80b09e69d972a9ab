package config

// Fansrc represents the structure of the .fansrc.yaml configuration file.
// Pointer fields distinguish an absent key from a zero value.
type Fansrc struct {
	Registry    string `yaml:"registry"`
	Concurrency *int   `yaml:"concurrency"`
	ResolveJobs *int   `yaml:"resolveJobs"`
	Lockfile    string `yaml:"lockfile"`
	ModulesDir  string `yaml:"modulesDir"`
	Timeout     string `yaml:"timeout"`
	Retries     *int   `yaml:"retries"`
}
