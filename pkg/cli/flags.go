package cli

import (
	"flag"

	"github.com/platinummonkey/graalkit/pkg/config"
)

// toolkitFlags are shared by every command that touches the cache
type toolkitFlags struct {
	baseURL      *string
	version      *string
	cacheDir     *string
	logLevel     *string
	logFormat    *string
	forceExtract *bool
}

func addToolkitFlags(fs *flag.FlagSet) *toolkitFlags {
	return &toolkitFlags{
		baseURL:      fs.String("base-url", "", "GraalVM download base URL (http, https or s3)"),
		version:      fs.String("version", "", "GraalVM version"),
		cacheDir:     fs.String("cache-dir", "", "Toolkit cache directory (default ~/.graalkit)"),
		logLevel:     fs.String("log-level", "", "Log level: debug, info, warn, error"),
		logFormat:    fs.String("log-format", "", "Log format: text or json"),
		forceExtract: fs.Bool("force-extract", false, "Re-extract the toolkit even if already present"),
	}
}

// buildFlags configure the native image target
type buildFlags struct {
	mainClass  *string
	outputName *string
	outputDir  *string
	classpath  *string
	projectDir *string
	assemble   *string
}

func addBuildFlags(fs *flag.FlagSet) *buildFlags {
	return &buildFlags{
		mainClass:  fs.String("main-class", "", "Fully qualified main class"),
		outputName: fs.String("output-name", "", "Executable name (default: project directory name)"),
		outputDir:  fs.String("output-dir", "", "Directory the executable is written to (default build/graal)"),
		classpath:  fs.String("classpath", "", "Assembled classpath, separated by the OS list separator"),
		projectDir: fs.String("project-dir", "", "Project directory the compiler runs in"),
		assemble:   fs.String("assemble", "", "Shell command that assembles the classpath, e.g. './gradlew jar'"),
	}
}

// loadConfig loads configuration and applies flags that were set explicitly
func loadConfig(fs *flag.FlagSet, tf *toolkitFlags, bf *buildFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			cfg.Toolkit.DownloadBaseURL = *tf.baseURL
		case "version":
			cfg.Toolkit.Version = *tf.version
		case "cache-dir":
			cfg.Toolkit.CacheDir = *tf.cacheDir
		case "log-level":
			cfg.Observability.LogLevel = *tf.logLevel
		case "log-format":
			cfg.Observability.LogFormat = *tf.logFormat
		case "force-extract":
			cfg.Toolkit.ForceExtract = *tf.forceExtract
		}
		if bf == nil {
			return
		}
		switch f.Name {
		case "main-class":
			cfg.Build.MainClass = *bf.mainClass
		case "output-name":
			cfg.Build.OutputName = *bf.outputName
		case "output-dir":
			cfg.Build.OutputDir = *bf.outputDir
		case "classpath":
			cfg.Build.Classpath = config.SplitClasspath(*bf.classpath)
		case "project-dir":
			cfg.Build.ProjectDir = *bf.projectDir
		case "assemble":
			cfg.Build.AssembleCommand = *bf.assemble
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
