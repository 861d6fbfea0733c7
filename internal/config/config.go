package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	ModeServer = "server"
	ModeClient = "client"

	TransportTCP = "tcp"
	TransportWs  = "ws"
)

type Config struct {
	Stage       string        `mapstructure:"stage" yaml:"stage"`
	Mode        string        `mapstructure:"mode" yaml:"mode"`
	Host        string        `mapstructure:"host" yaml:"host"`
	Port        int           `mapstructure:"port" yaml:"port"`
	MapPath     string        `mapstructure:"map" yaml:"map"`
	ShowFleet   bool          `mapstructure:"gui" yaml:"gui"`
	Transport   string        `mapstructure:"transport" yaml:"transport"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	DatabaseURL string        `mapstructure:"database_url" yaml:"database_url"`
}

// Environment variable for every config key
var envKeys = map[string]string{
	"STAGE":                   "stage",
	"BATTLESHIP_MODE":         "mode",
	"BATTLESHIP_HOST":         "host",
	"PORT":                    "port",
	"BATTLESHIP_MAP":          "map",
	"BATTLESHIP_GUI":          "gui",
	"BATTLESHIP_TRANSPORT":    "transport",
	"BATTLESHIP_READ_TIMEOUT": "read_timeout",
	"DATABASE_URL":            "database_url",
}

// Flag name to config key, where they differ
var flagKeys = map[string]string{
	"timeout": "read_timeout",
	"db":      "database_url",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"stage":        StageDev,
		"mode":         ModeServer,
		"host":         "localhost",
		"port":         9191,
		"gui":          true,
		"transport":    TransportTCP,
		"read_timeout": "120s",
	}
}

// Load builds the config from, lowest priority first: defaults, the
// YAML file named by -config or BATTLESHIP_CONFIG, environment
// variables and finally flags that were set explicitly.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	fs := flag.NewFlagSet("battleship", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "path to a YAML config file")
	fs.String("stage", StageDev, "dev or prod")
	fs.String("mode", ModeServer, "server waits for the opponent, client connects and fires first")
	fs.String("host", "localhost", "host to connect to in client mode")
	fs.Int("port", 9191, "port to listen on or connect to")
	fs.String("map", "", "path to a map file; a random map is generated when empty or invalid")
	fs.Bool("gui", true, "show your own fleet after every exchange")
	fs.String("transport", TransportTCP, "tcp or ws")
	fs.Duration("timeout", 120*time.Second, "read timeout before the last message is resent")
	fs.String("db", "", "postgres url for recording game results")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	raw := defaults()

	if *configPath == "" {
		if path, ok := lookupEnv("BATTLESHIP_CONFIG"); ok {
			*configPath = path
		}
	}
	if *configPath != "" {
		fileValues, err := readYamlFile(*configPath)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			raw[k] = v
		}
	}

	for env, key := range envKeys {
		if v, ok := lookupEnv(env); ok && v != "" {
			raw[key] = v
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = f.Name
		}
		raw[key] = f.Value.String()
	})

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYamlFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var values map[string]interface{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unable to parse yaml config: %w", err)
	}
	return values, nil
}

// Values coming from env and flags are all strings; weak typing turns
// them into the field types.
func decode(raw map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	cfg.Stage = strings.ToLower(cfg.Stage)
	cfg.Mode = strings.ToLower(cfg.Mode)
	cfg.Transport = strings.ToLower(cfg.Transport)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Stage != StageDev && c.Stage != StageProd {
		return cerr.ErrInvalidStage(c.Stage)
	}
	if c.Mode != ModeServer && c.Mode != ModeClient {
		return cerr.ErrInvalidMode(c.Mode)
	}
	if c.Transport != TransportTCP && c.Transport != TransportWs {
		return cerr.ErrInvalidTransport(c.Transport)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got: %s", c.ReadTimeout)
	}
	return nil
}
