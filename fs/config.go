package fs

// Global
var (
	// Config is the global config
	Config = NewConfig()
)

// ConfigInfo holds the options for driving the cluster's command line
// tools.
type ConfigInfo struct {
	LogLevel     LogLevel
	UseJSONLog   bool
	HadoopBinary string // command used for "hadoop fs" and "hadoop jar"
	StreamingJar string // location of the streaming jar, "" to discover it
	JavaMemMB    int    // java heap ceiling passed to spawned tools
	Readers      int    // maximum number of concurrent dump processes
	IgnoreLogs   bool   // skip files whose basename starts with "_"
}

// NewConfig creates a new config with everything set to the default
// value. These are the ultimate defaults and are overridden by the
// command line flags.
func NewConfig() *ConfigInfo {
	c := new(ConfigInfo)

	// Set any values which aren't the zero for the type
	c.LogLevel = LogLevelNotice
	c.HadoopBinary = "hadoop"
	c.JavaMemMB = 100
	c.Readers = 10
	c.IgnoreLogs = true

	return c
}
