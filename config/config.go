// Package config loads ledgr settings from a YAML file, the environment and
// .env files on top of embedded defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/aqlanhadi/ledgr/extractor"
	"github.com/aqlanhadi/ledgr/extractor/profile"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultYAML is used for every key the config file leaves out.
const DefaultYAML = `
workers: 0
document_timeout: 2m
min_line_length: 11
pdf:
  license_key: ""
server:
  port: 8080
database:
  url: ""
output:
  format: json
categories: []
profiles: []
`

// EnvPrefix prefixes environment overrides, e.g. LEDGR_SERVER_PORT.
const EnvPrefix = "LEDGR"

var ErrInvalidConfig = errors.New("invalid configuration")

type PDF struct {
	LicenseKey string `mapstructure:"license_key"`
}

type Server struct {
	Port int `mapstructure:"port"`
}

type Database struct {
	URL string `mapstructure:"url"`
}

type Output struct {
	Format string `mapstructure:"format"`
}

// Profile describes an extra bank layout. Detect holds the tokens that
// identify its statements.
type Profile struct {
	Name     string   `mapstructure:"name"`
	Detect   []string `mapstructure:"detect"`
	Suppress []string `mapstructure:"suppress"`
}

type Config struct {
	Workers         int                    `mapstructure:"workers"`
	DocumentTimeout time.Duration          `mapstructure:"document_timeout"`
	MinLineLength   int                    `mapstructure:"min_line_length"`
	PDF             PDF                    `mapstructure:"pdf"`
	Server          Server                 `mapstructure:"server"`
	Database        Database               `mapstructure:"database"`
	Output          Output                 `mapstructure:"output"`
	Categories      []categorizer.Category `mapstructure:"categories"`
	Profiles        []Profile              `mapstructure:"profiles"`
}

// Defaults registers DefaultYAML as the fallback value of every key.
func Defaults(v *viper.Viper) error {
	d := viper.New()
	d.SetConfigType("yaml")
	if err := d.ReadConfig(strings.NewReader(DefaultYAML)); err != nil {
		return fmt.Errorf("embedded defaults: %w", err)
	}
	for _, key := range d.AllKeys() {
		v.SetDefault(key, d.Get(key))
	}
	return nil
}

// Read prepares v: defaults, environment overrides, then the config file.
// With an empty file name it looks for .ledgr.yaml in the working directory
// and then the home directory, and runs on defaults when neither exists.
func Read(v *viper.Viper, file string) error {
	if err := Defaults(v); err != nil {
		return err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".ledgr")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// LoadDotEnv exports the variables of the given .env files, or ./.env when
// none are named. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.DocumentTimeout < 0 {
		errs = append(errs, fmt.Errorf("document_timeout must not be negative, got %s", c.DocumentTimeout))
	}
	if c.MinLineLength < 1 {
		errs = append(errs, fmt.Errorf("min_line_length must be at least 1, got %d", c.MinLineLength))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Output.Format {
	case "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("output.format must be json or csv, got %q", c.Output.Format))
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: name is required", i))
		}
	}
	for i, p := range c.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("profiles[%d]: name is required", i))
		}
		if len(p.Detect) == 0 {
			errs = append(errs, fmt.Errorf("profiles[%d]: at least one detect token is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Classifier returns the built-in categories extended with the configured
// ones, in file order.
func (c Config) Classifier() (*categorizer.Classifier, error) {
	cl := categorizer.New()
	for _, cat := range c.Categories {
		if err := cl.Register(cat); err != nil {
			return nil, err
		}
	}
	return cl, nil
}

// Registry returns the built-in bank profiles followed by the configured
// ones.
func (c Config) Registry() *profile.Registry {
	r := profile.Default()
	for _, p := range c.Profiles {
		r = r.With(profile.NewBank(p.Name, p.Suppress...), p.Detect...)
	}
	return r
}

// PipelineOptions translates the extraction settings.
func (c Config) PipelineOptions() []extractor.Option {
	return []extractor.Option{
		extractor.WithWorkers(c.Workers),
		extractor.WithDocumentTimeout(c.DocumentTimeout),
		extractor.WithMinLineLength(c.MinLineLength),
		extractor.WithProfiles(c.Registry()),
	}
}
