package data

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Rib    RibConfig    `yaml:"rib"`
	Otp    OtpConfig    `yaml:"otp"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"` // dev, test, release
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DataConfig struct {
	// bank_code.csv and beneficiary.bf live here
	Dir string `yaml:"dir"`
}

type RibConfig struct {
	IbanPrefix string `yaml:"iban_prefix"`
}

type OtpConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MaxAttempts   int           `yaml:"max_attempts"`
	Length        int           `yaml:"length"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Mode:         RunModeDev,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Data: DataConfig{Dir: "./test"},
		Rib:  RibConfig{IbanPrefix: "GN82"},
		Otp: OtpConfig{
			TTL:           5 * time.Minute,
			MaxAttempts:   3,
			Length:        6,
			PurgeInterval: time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment variables are applied last. The result is not
// validated: command line flags may still replace values, so callers run
// Validate once everything is applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err == nil {
			if err = yaml.Unmarshal(content, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v, ok := os.LookupEnv("RIBDB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "RIBDB_PORT")
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("RIBDB_MODE"); ok && v != "" {
		c.Server.Mode = v
	}
	if v, ok := os.LookupEnv("RIBDB_DATA_DIR"); ok && v != "" {
		c.Data.Dir = v
	}
	if v, ok := os.LookupEnv("RIBDB_IBAN_PREFIX"); ok && v != "" {
		c.Rib.IbanPrefix = v
	}
	if v, ok := os.LookupEnv("RIBDB_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Server.Mode {
	case RunModeDev, RunModeTest, RunModeRelease:
	default:
		return errors.Errorf("unknown run mode %q", c.Server.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Server.Port)
	}
	if len(c.Rib.IbanPrefix) != 4 {
		return errors.Errorf("iban prefix %q must be 4 characters", c.Rib.IbanPrefix)
	}
	if c.Otp.MaxAttempts <= 0 || c.Otp.Length <= 0 || c.Otp.TTL <= 0 {
		return errors.New("otp ttl, max_attempts and length must be positive")
	}
	return nil
}
