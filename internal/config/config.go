package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDataDir  = "data"
	DefaultStorage  = "json"
	DefaultLogLevel = "info"
	DefaultHTTPAddr = "127.0.0.1:7334"
	DefaultAIModel  = "gemini-1.5-flash"

	ConfigFileName = ".devbot.toml"

	configDirEnvKey          = "DEVBOT_CONFIG_DIR"
	trustProjectConfigEnvKey = "DEVBOT_TRUST_PROJECT_CONFIG"

	DiscordTokenEnvKey  = "DISCORD_TOKEN"
	DiscordAppIDEnvKey  = "DISCORD_APPLICATION_ID"
	GeminiAPIKeyEnvKey  = "GEMINI_API_KEY"
	dataDirEnvKey       = "DEVBOT_DATA_DIR"
	storageEnvKey       = "DEVBOT_STORAGE"
	httpAddrEnvKey      = "DEVBOT_HTTP_ADDR"
	redactedSecretValue = "(set)"
)

// DiscordConfig holds gateway credentials and command registration scope.
type DiscordConfig struct {
	Token         string `toml:"token"`
	ApplicationID string `toml:"application_id"`
	// GuildID limits slash command registration to one guild when set.
	GuildID string `toml:"guild_id"`
}

// AIConfig selects the text-generation backend.
type AIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// HTTPConfig controls the status API.
type HTTPConfig struct {
	// Addr is a host:port or URL; empty disables the server.
	Addr            string `toml:"addr"`
	StatusTokenHash string `toml:"status_token_hash"`
}

// Config defines runtime configuration for devbot.
type Config struct {
	DataDir                  string        `toml:"data_dir"`
	Storage                  string        `toml:"storage"`
	LogLevel                 string        `toml:"log_level"`
	Discord                  DiscordConfig `toml:"discord"`
	AI                       AIConfig      `toml:"ai"`
	HTTP                     HTTPConfig    `toml:"http"`
	TrustedProjectConfigPath string        `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DataDir:  DefaultDataDir,
		Storage:  DefaultStorage,
		LogLevel: DefaultLogLevel,
		AI: AIConfig{
			Model: DefaultAIModel,
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ConfigFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"data_dir",
	"storage",
	"log_level",
	"discord.token",
	"discord.application_id",
	"discord.guild_id",
	"ai.api_key",
	"ai.model",
	"http.addr",
	"http.status_token_hash",
}

var secretKeys = map[string]struct{}{
	"discord.token": {},
	"ai.api_key":    {},
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key. Secrets are reported as set or empty.
func (c *Config) Get(key string) (string, error) {
	var value string
	switch key {
	case "data_dir":
		value = c.DataDir
	case "storage":
		value = c.Storage
	case "log_level":
		value = c.LogLevel
	case "discord.token":
		value = c.Discord.Token
	case "discord.application_id":
		value = c.Discord.ApplicationID
	case "discord.guild_id":
		value = c.Discord.GuildID
	case "ai.api_key":
		value = c.AI.APIKey
	case "ai.model":
		value = c.AI.Model
	case "http.addr":
		value = c.HTTP.Addr
	case "http.status_token_hash":
		value = c.HTTP.StatusTokenHash
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
	if _, secret := secretKeys[key]; secret && value != "" {
		return redactedSecretValue, nil
	}
	return value, nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ConfigFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, ConfigFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, ConfigFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{key: DiscordTokenEnvKey, dst: &cfg.Discord.Token},
		{key: DiscordAppIDEnvKey, dst: &cfg.Discord.ApplicationID},
		{key: GeminiAPIKeyEnvKey, dst: &cfg.AI.APIKey},
		{key: dataDirEnvKey, dst: &cfg.DataDir},
		{key: storageEnvKey, dst: &cfg.Storage},
		{key: httpAddrEnvKey, dst: &cfg.HTTP.Addr},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok {
			*o.dst = strings.TrimSpace(value)
		}
	}
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = DefaultDataDir
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage)) {
	case "":
		c.Storage = DefaultStorage
	case "json", "sqlite":
		c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	default:
		return fmt.Errorf("invalid storage %q (want json or sqlite)", c.Storage)
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultAIModel
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "storage":
		lowered := strings.ToLower(value)
		if lowered != "json" && lowered != "sqlite" {
			return nil, fmt.Errorf("storage must be json or sqlite")
		}
		return lowered, nil
	case "discord.application_id", "discord.guild_id":
		if value == "" {
			return value, nil
		}
		if parsed, err := strconv.ParseUint(value, 10, 64); err != nil || parsed == 0 {
			return nil, fmt.Errorf("%s must be a numeric id", key)
		}
		return value, nil
	case "http.status_token_hash":
		if value != "" && !strings.HasPrefix(value, "$2") {
			return nil, fmt.Errorf("%s must be a bcrypt hash (see `devbot token hash`)", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
