package mapper

import (
	"github.com/theoremus-urban-solutions/transit-network-mapper/config"
	"github.com/theoremus-urban-solutions/transit-network-mapper/geometry"
	"github.com/theoremus-urban-solutions/transit-network-mapper/logging"
)

// Options configures a mapping batch.
//
// Use DefaultOptions() to get a base configuration, then chain With*
// methods to customize specific settings:
//
//	options := mapper.DefaultOptions().
//		WithConfig(cfg).
//		WithShapes(shapes).
//		WithVerbose(true)
//
// All With* methods return the same Options instance for method chaining.
type Options struct {
	// Config holds the mapper configuration. If nil, defaults are used.
	Config *config.MapperConfig

	// Shapes maps shape ids to route shapes. Routes carrying a shape
	// id found here are routed with shape bias; others use the plain
	// cost policy.
	Shapes map[string]*geometry.Shape

	// Logger allows custom logger injection. If nil, a logger is
	// created from the configuration's log section.
	Logger *logging.Logger

	// Verbose lowers the log level to DEBUG regardless of the
	// configuration. It applies only when no Logger is injected.
	Verbose bool
}

// DefaultOptions returns an Options instance with default settings.
func DefaultOptions() *Options {
	return &Options{}
}

// WithConfig sets the mapper configuration.
func (o *Options) WithConfig(cfg *config.MapperConfig) *Options {
	o.Config = cfg
	return o
}

// WithShapes sets the shapes map used for shape-biased routing.
func (o *Options) WithShapes(shapes map[string]*geometry.Shape) *Options {
	o.Shapes = shapes
	return o
}

// WithLogger sets a custom logger.
func (o *Options) WithLogger(logger *logging.Logger) *Options {
	o.Logger = logger
	return o
}

// WithVerbose enables debug logging.
func (o *Options) WithVerbose(verbose bool) *Options {
	o.Verbose = verbose
	return o
}

func (o *Options) resolveConfig() *config.MapperConfig {
	if o.Config != nil {
		return o.Config
	}
	return config.DefaultConfig()
}

func (o *Options) resolveLogger(cfg *config.MapperConfig) *logging.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	level := logging.ParseLevel(cfg.Log.Level)
	if o.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
	})
}
