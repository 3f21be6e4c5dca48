// Package config assembles the appliance configuration from defaults, an
// optional YAML file, the environment (and .env file) and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fatigue/internal/audio"
	"fatigue/internal/fatigue"
	"fatigue/internal/gpio"
)

const (
	ClassifierCommand = "command"
	ClassifierHTTP    = "http"
)

type Config struct {
	Audio      audio.Format     `yaml:"audio"`
	Output     string           `yaml:"output"`
	Input      string           `yaml:"input"`
	Model      string           `yaml:"model"`
	Duck       DuckConfig       `yaml:"duck"`
	Classifier ClassifierConfig `yaml:"classifier"`
	GPIO       GPIOConfig       `yaml:"gpio"`
	Notify     NotifyConfig     `yaml:"notify"`
	Hub        HubConfig        `yaml:"hub"`
	Log        string           `yaml:"log"`
	Socket     string           `yaml:"socket"`
}

type DuckConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Factor    float64       `yaml:"factor"`
	Fade      time.Duration `yaml:"fade"`
	MinVolume int           `yaml:"min_volume"`
	Self      []string      `yaml:"self"`
}

type ClassifierConfig struct {
	Kind       string        `yaml:"kind"`
	Command    string        `yaml:"command"`
	Args       []string      `yaml:"args"`
	URL        string        `yaml:"url"`
	Proxy      string        `yaml:"proxy"`
	Timeout    time.Duration `yaml:"timeout"`
	ResultPath string        `yaml:"result_path"`
}

type GPIOConfig struct {
	Tool  string     `yaml:"tool"`
	Chip  string     `yaml:"chip"`
	Lines gpio.Lines `yaml:"lines"`
}

type NotifyConfig struct {
	Sound    string `yaml:"sound"`
	MinLevel string `yaml:"min_level"`
	Speak    bool   `yaml:"speak"`
}

type HubConfig struct {
	URL     string        `yaml:"url"`
	Shard   string        `yaml:"shard"`
	Timeout time.Duration `yaml:"timeout"`
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Default mirrors the appliance as shipped: a 20 second stereo clip at
// 44.1kHz, models.pkl, and gpiochip4 lines 2/3/4.
func Default() *Config {
	return &Config{
		Audio:  audio.DefaultFormat,
		Output: "output.wav",
		Model:  "models.pkl",
		Duck: DuckConfig{
			Factor:    0.2,
			Fade:      300 * time.Millisecond,
			MinVolume: 5,
			Self:      []string{"fatigue"},
		},
		Classifier: ClassifierConfig{
			Kind:    ClassifierCommand,
			Command: "fatigue-predict",
			Args:    []string{"--model", "{model}", "--wav", "{wav}"},
			Timeout: 60 * time.Second,
		},
		GPIO: GPIOConfig{
			Tool:  gpio.DefaultTool,
			Chip:  gpio.DefaultChip,
			Lines: gpio.DefaultLines,
		},
		Notify: NotifyConfig{MinLevel: fatigue.High.String()},
		Hub: HubConfig{
			Shard:   "FATIGUE",
			Timeout: 5 * time.Second,
		},
		Log:    "info",
		Socket: "/tmp/fatigue.sock",
	}
}

// Load reads the YAML file at path (if any) over the defaults, then the
// env file (if present) and the process environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"FATIGUE_MODEL":             &c.Model,
		"FATIGUE_OUTPUT":            &c.Output,
		"FATIGUE_INPUT":             &c.Input,
		"FATIGUE_LOG":               &c.Log,
		"FATIGUE_SOCKET":            &c.Socket,
		"FATIGUE_CLASSIFIER":        &c.Classifier.Kind,
		"FATIGUE_PREDICTOR":         &c.Classifier.Command,
		"FATIGUE_CLASSIFIER_URL":    &c.Classifier.URL,
		"FATIGUE_CLASSIFIER_RESULT": &c.Classifier.ResultPath,
		"FATIGUE_PROXY":             &c.Classifier.Proxy,
		"FATIGUE_GPIO_TOOL":         &c.GPIO.Tool,
		"FATIGUE_GPIO_CHIP":         &c.GPIO.Chip,
		"FATIGUE_ALERT_SOUND":       &c.Notify.Sound,
		"FATIGUE_HUB_URL":           &c.Hub.URL,
		"FATIGUE_HUB_SHARD":         &c.Hub.Shard,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FATIGUE_SAMPLE_RATE": &c.Audio.SampleRate,
		"FATIGUE_CHANNELS":    &c.Audio.Channels,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("FATIGUE_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FATIGUE_DURATION: %w", err)
		}
		c.Audio.Duration = d
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if c.Model == "" {
		return errors.New("model reference is empty")
	}
	if err := c.GPIO.Lines.Validate(); err != nil {
		return fmt.Errorf("gpio: %w", err)
	}
	if c.GPIO.Tool == "" || c.GPIO.Chip == "" {
		return errors.New("gpio: tool and chip are required")
	}

	switch c.Classifier.Kind {
	case ClassifierCommand:
		if c.Classifier.Command == "" {
			return errors.New("classifier: predictor command is empty")
		}
	case ClassifierHTTP:
		if c.Classifier.URL == "" {
			return errors.New("classifier: url is empty")
		}
	default:
		return fmt.Errorf("classifier: unknown kind %q", c.Classifier.Kind)
	}

	if c.Duck.Enabled && (c.Duck.Factor <= 0 || c.Duck.Factor > 1) {
		return fmt.Errorf("duck: factor must be in (0, 1], got %v", c.Duck.Factor)
	}
	if _, err := fatigue.ParseLevel(c.Notify.MinLevel); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if !logLevels[c.Log] {
		return fmt.Errorf("unknown log level %q", c.Log)
	}
	return nil
}
