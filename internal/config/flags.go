package config

// Flags are the command line and environment overrides shared by the
// binaries. Embed them in a kong command struct.
type Flags struct {
	Config     string `help:"Path to the config file (default ~/.escuela/config.yaml)" type:"path" env:"ESCUELA_CONFIG"`
	APIURL     string `name:"api-url" help:"School API base URL" env:"ESCUELA_API_URL"`
	Storage    string `help:"Where the session is kept between runs (file, memory, none)" env:"ESCUELA_STORAGE"`
	StorageDir string `help:"Session storage directory" type:"path" env:"ESCUELA_STORAGE_DIR"`
	CacheDir   string `help:"HTTP cache directory, in memory when unset" type:"path" env:"ESCUELA_CACHE_DIR"`
	Timeout    string `help:"Request timeout, eg 30s" env:"ESCUELA_TIMEOUT"`
}

// Overrides converts the flags into config overrides.
func (f Flags) Overrides() Overrides {
	return Overrides{
		APIURL:     f.APIURL,
		Storage:    f.Storage,
		StorageDir: f.StorageDir,
		CacheDir:   f.CacheDir,
		Timeout:    f.Timeout,
	}
}

// Load reads the config named by the flags and applies them on top.
func (f Flags) Load() (*Config, error) {
	return Load(f.Config, f.Overrides())
}
