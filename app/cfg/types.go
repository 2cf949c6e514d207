package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	APIAccessKey      string
	SchedulerInterval int // seconds
	FetchTimeout      int // seconds
	SeedFile          string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
