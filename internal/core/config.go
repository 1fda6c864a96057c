package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the options the fix reads from its yaml file.
// Dimensions left at zero are filled in from the current desktop mode
// before the aspect ratio is derived.
type Config struct {
	// Display name used in log lines.
	Name string `mapstructure:"name"`
	// Kill switch for every fix at once.
	MasterEnable bool `mapstructure:"master_enable"`

	Resolution struct {
		Width  int `mapstructure:"width"`
		Height int `mapstructure:"height"`
	} `mapstructure:"resolution"`

	Fixes struct {
		Pillarbox struct {
			Enable bool `mapstructure:"enable"`
		} `mapstructure:"pillarbox"`
		Resolution struct {
			Enable bool `mapstructure:"enable"`
		} `mapstructure:"resolution"`
		FOV struct {
			Enable bool `mapstructure:"enable"`
			// Scales the corrected field of view. 1.0 leaves it as computed.
			Multiplier float64 `mapstructure:"multiplier"`
		} `mapstructure:"fov"`
	} `mapstructure:"fixes"`

	Logging struct {
		// Full path of the file logs are written to. Blank writes to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"logging"`
}

const envVarPrefix = "CODEVEINFIX"

// LoadConfig initializes Viper with the contents of the config file under
// configPath. Errors are returned rather than terminating the process since
// this code runs inside someone else's address space.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("codeveinfix")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file in %s: %w", configPath, err)
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, fixes.fov.multiplier can be set using:
	// <envVarPrefix>_FIXES_FOV_MULTIPLIER
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if config.Fixes.FOV.Multiplier == 0 {
		config.Fixes.FOV.Multiplier = 1.0
	}
	return config, nil
}

// AspectRatio returns the configured aspect ratio as a single precision
// float, matching how the value is stored by the engine being patched.
func (c *Config) AspectRatio() float32 {
	if c.Resolution.Height == 0 {
		return 0
	}
	return float32(c.Resolution.Width) / float32(c.Resolution.Height)
}

// ReducedResolution returns width and height divided by their greatest
// common divisor, e.g. 3440x1440 reduces to 43:18.
func (c *Config) ReducedResolution() (int, int) {
	d := gcd(c.Resolution.Width, c.Resolution.Height)
	if d == 0 {
		return c.Resolution.Width, c.Resolution.Height
	}
	return c.Resolution.Width / d, c.Resolution.Height / d
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
