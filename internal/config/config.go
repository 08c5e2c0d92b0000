// Package config loads the provider configuration file with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/provider/pkg/types"
)

const (
	FileName = "provider"
	FileType = "yaml"
	FileExt  = FileName + "." + FileType

	// EnvPrefix prefixes environment overrides, e.g. PROVIDER_DATABASE_VERSION.
	EnvPrefix = "PROVIDER"
)

// Config keys.
const (
	KeyAuthority       = "authority"
	KeyBackend         = "backend"
	KeyDataDir         = "data_dir"
	KeyDSN             = "dsn"
	KeyDatabaseName    = "database.name"
	KeyDatabaseVersion = "database.version"
	KeyContracts       = "contracts"
	KeyRedisAddr       = "notify.redis_addr"
	KeyChannel         = "notify.channel"
)

// Defaults written on first run.
const (
	DefaultAuthority    = "com.example.provider"
	DefaultDatabaseName = "provider.db"
)

// Default returns the configuration written to a fresh config directory:
// one notes collection on SQLite.
func Default() types.Config {
	return types.Config{
		Authority: DefaultAuthority,
		Backend:   types.BackendSQLite,
		Database:  types.DatabaseConfig{Name: DefaultDatabaseName, Version: 1},
		Contracts: []types.ContractDefinition{{
			Table: "notes",
			Path:  "notes",
			Columns: []types.ColumnDefinition{
				{Name: "title", Type: "TEXT"},
				{Name: "body", Type: "TEXT"},
			},
		}},
	}
}

// Path returns the configuration file path in dir.
func Path(dir string) string {
	return filepath.Join(dir, FileExt)
}

// Load reads provider.yaml from dir, creating dir and a default file on
// first run. Environment variables prefixed with PROVIDER_ override file
// values. The result is validated.
func Load(dir string) (types.Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := WriteIfMissing(dir, Default()); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	// viper folds map keys to lower case; projection aliases keep theirs.
	if file := v.ConfigFileUsed(); file != "" {
		contracts, err := readContracts(file)
		if err != nil {
			return types.Config{}, err
		}
		cfg.Contracts = contracts
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config %s: %w", Path(dir), err)
	}
	return cfg, nil
}

// readContracts decodes the contracts list of file with yaml.v3, which
// preserves key case.
func readContracts(file string) ([]types.ContractDefinition, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc struct {
		Contracts []types.ContractDefinition `yaml:"contracts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode contracts: %w", err)
	}
	return doc.Contracts, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys need a default for AutomaticEnv to reach them through Unmarshal.
	v.SetDefault(KeyAuthority, "")
	v.SetDefault(KeyBackend, types.BackendSQLite)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyDSN, "")
	v.SetDefault(KeyDatabaseName, DefaultDatabaseName)
	v.SetDefault(KeyDatabaseVersion, 1)
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyChannel, "")
	return v
}

// WriteIfMissing writes cfg to provider.yaml in dir unless the file
// exists.
func WriteIfMissing(dir string, cfg types.Config) error {
	if _, err := os.Stat(Path(dir)); err == nil {
		return nil
	}
	return Write(dir, cfg)
}

// Write stores cfg as provider.yaml in dir, replacing any existing file.
func Write(dir string, cfg types.Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# provider configuration; PROVIDER_* environment variables override keys\n"
	return os.WriteFile(Path(dir), append([]byte(header), data...), 0o644)
}
