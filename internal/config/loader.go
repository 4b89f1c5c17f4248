package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	envPrefix = "RELEASEPLAN"
	fileName  = "releaseplan.yaml"
)

// legacyEnv maps keys to the variable names older deployments export.
var legacyEnv = map[string]string{
	"devops.collection": "AZURE_DEVOPS_ORG",
	"devops.project":    "AZURE_DEVOPS_PROJECT",
	"devops.token":      "AZURE_DEVOPS_PAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("devops.instance", "dev.azure.com")
	v.SetDefault("devops.scheme", "https")
	v.SetDefault("devops.collection", "")
	v.SetDefault("devops.token", "")
	v.SetDefault("devops.project", "")
	v.SetDefault("devops.timeout", "15s")
	v.SetDefault("devops.max_retries", 1)

	v.SetDefault("db.path", filepath.Join(DataDir(), "releaseplan.db"))
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "5m")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.api_token", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("aggregation.policy", "degrade")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "releaseplan")
}

// Load reads configuration from defaults, the config file and the
// environment, in increasing precedence. An explicit path must exist;
// otherwise ./releaseplan.yaml and ~/.releaseplan/config.yaml are tried.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = file
	cfg.DB.Path = expandHome(cfg.DB.Path)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg and names the offending key in the error.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("%s failed %s=%s", key, fe.Tag(), fe.Param())
}

func resolveFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	candidates := []string{fileName, filepath.Join(DataDir(), "config.yaml")}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", nil
}

// DataDir is the per-user directory holding the database and config file.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".releaseplan"
	}
	return filepath.Join(home, ".releaseplan")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
