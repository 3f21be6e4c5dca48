package config

import (
	cli "github.com/spf13/pflag"
)

// Flags binds command-line overrides. Only flags given on the command line
// replace values from the file and environment.
type Flags struct {
	ConfigPath string
	EnvFile    string

	fs *cli.FlagSet
	v  Config
}

func RegisterFlags(fs *cli.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&f.EnvFile, "env", "e", ".env", "Env file path")
	fs.StringVarP(&f.v.Log, "log", "l", d.Log, "Log level")
	fs.StringVarP(&f.v.Model, "model", "m", d.Model, "Model reference handed to the classifier")
	fs.StringVarP(&f.v.Output, "output", "o", d.Output, "Path of the recorded clip")
	fs.StringVarP(&f.v.Input, "input", "i", "", "Replay this audio file instead of recording")
	fs.DurationVar(&f.v.Audio.Duration, "duration", d.Audio.Duration, "Recording length")
	fs.IntVar(&f.v.Audio.SampleRate, "rate", d.Audio.SampleRate, "Sample rate in Hz")
	fs.IntVar(&f.v.Audio.Channels, "channels", d.Audio.Channels, "Channel count (1 or 2)")
	fs.StringVar(&f.v.Classifier.Kind, "classifier", d.Classifier.Kind, "Classifier kind: command or http")
	fs.StringVar(&f.v.Classifier.Command, "predictor", d.Classifier.Command, "Predictor executable")
	fs.StringVar(&f.v.Classifier.URL, "classifier-url", "", "Classifier service url")
	fs.StringVarP(&f.v.Classifier.Proxy, "proxy", "p", "", "Socks proxy address for the classifier service")
	fs.StringVar(&f.v.GPIO.Tool, "gpio-tool", d.GPIO.Tool, "GPIO utility")
	fs.StringVar(&f.v.GPIO.Chip, "chip", d.GPIO.Chip, "GPIO chip")
	fs.BoolVar(&f.v.Duck.Enabled, "duck", false, "Lower other audio streams while recording")
	fs.StringVar(&f.v.Notify.Sound, "alert", "", "mp3 played on a verdict at or above --alert-level")
	fs.StringVar(&f.v.Notify.MinLevel, "alert-level", d.Notify.MinLevel, "Lowest level that triggers alerts")
	fs.BoolVar(&f.v.Notify.Speak, "speak", false, "Speak the verdict")
	fs.StringVar(&f.v.Hub.URL, "hub", "", "Hub websocket url for verdict reports")
	fs.StringVar(&f.v.Socket, "socket", d.Socket, "Control socket path")

	return f
}

// Load reads the file and environment, applies changed flags and validates.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.ConfigPath, f.EnvFile)
	if err != nil {
		return nil, err
	}
	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) {
	set := func(name string, apply func()) {
		if f.fs.Changed(name) {
			apply()
		}
	}

	set("log", func() { cfg.Log = f.v.Log })
	set("model", func() { cfg.Model = f.v.Model })
	set("output", func() { cfg.Output = f.v.Output })
	set("input", func() { cfg.Input = f.v.Input })
	set("duration", func() { cfg.Audio.Duration = f.v.Audio.Duration })
	set("rate", func() { cfg.Audio.SampleRate = f.v.Audio.SampleRate })
	set("channels", func() { cfg.Audio.Channels = f.v.Audio.Channels })
	set("classifier", func() { cfg.Classifier.Kind = f.v.Classifier.Kind })
	set("predictor", func() { cfg.Classifier.Command = f.v.Classifier.Command })
	set("classifier-url", func() {
		cfg.Classifier.URL = f.v.Classifier.URL
		if !f.fs.Changed("classifier") {
			cfg.Classifier.Kind = ClassifierHTTP
		}
	})
	set("proxy", func() { cfg.Classifier.Proxy = f.v.Classifier.Proxy })
	set("gpio-tool", func() { cfg.GPIO.Tool = f.v.GPIO.Tool })
	set("chip", func() { cfg.GPIO.Chip = f.v.GPIO.Chip })
	set("duck", func() { cfg.Duck.Enabled = f.v.Duck.Enabled })
	set("alert", func() { cfg.Notify.Sound = f.v.Notify.Sound })
	set("alert-level", func() { cfg.Notify.MinLevel = f.v.Notify.MinLevel })
	set("speak", func() { cfg.Notify.Speak = f.v.Notify.Speak })
	set("hub", func() { cfg.Hub.URL = f.v.Hub.URL })
	set("socket", func() { cfg.Socket = f.v.Socket })
}
