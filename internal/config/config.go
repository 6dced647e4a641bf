// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/cueutil"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/fspath"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/platform"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "finetune"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigName is the base name of a config file in the working directory.
	LocalConfigName = AppName

	schemaRoot = "#Config"
)

var (
	// ErrConfigFileNotFound is wrapped when an explicitly requested config file does not exist.
	ErrConfigFileNotFound = errors.New("config file not found")
	// ErrConfigFileInvalid is wrapped when a config file cannot be read, parsed or validated.
	ErrConfigFileInvalid = errors.New("config file invalid")
	// ErrEnvFile is wrapped when the env file cannot be loaded.
	ErrEnvFile = errors.New("env file could not be loaded")
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the finetune configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	root, err := platform.UserConfigRoot(runtime.GOOS, platform.Env{Getenv: os.Getenv, HomeDir: os.UserHomeDir})
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	return filepath.Join(root, AppName), nil
}

// SearchPaths returns the config file candidates in order of precedence.
// When opts names a config file it is the only candidate.
func SearchPaths(opts LoadOptions) ([]string, error) {
	if opts.ConfigFilePath != "" {
		return []string{string(opts.ConfigFilePath)}, nil
	}

	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return nil, err
	}

	return []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		LocalConfigName + ".cue",
		LocalConfigName + ".toml",
	}, nil
}

// FindConfigFile returns the config file that a load with opts would read, or
// "" when none exists and defaults apply.
func FindConfigFile(opts LoadOptions) (string, error) {
	candidates, err := SearchPaths(opts)
	if err != nil {
		return "", err
	}

	if opts.ConfigFilePath != "" {
		if !fileExists(candidates[0]) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(candidates[0]).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'finetune config show' to see the default configuration").
				Wrap(fmt.Errorf("%w: %s", ErrConfigFileNotFound, candidates[0])).
				BuildError()
		}
		return candidates[0], nil
	}

	for _, path := range candidates {
		if fileExists(path) {
			return path, nil
		}
	}

	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. Layers, lowest first: defaults, config file, env file,
// environment, changed flags.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := viper.New()

	defaults := DefaultConfig()
	for _, f := range fields {
		v.SetDefault(f.key, f.value(defaults))
	}

	resolvedPath, err := FindConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadFileIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE or TOML syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'finetune config dump' for every key and its default").
				Wrap(fmt.Errorf("%w: %w", ErrConfigFileInvalid, err)).
				BuildError()
		}
		slog.Debug("loaded config file", "path", resolvedPath)
	}

	if opts.EnvFile != "" {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(string(opts.EnvFile)); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load env file").
				WithResource(string(opts.EnvFile)).
				WithSuggestion("Check that the file exists and uses KEY=value lines").
				WithSuggestionf("Variables must use the %s_ prefix, e.g. %s", EnvPrefix, EnvName("data.dataset_name")).
				Wrap(fmt.Errorf("%w: %w", ErrEnvFile, err)).
				BuildError()
		}
		slog.Debug("loaded env file", "path", opts.EnvFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, f := range fields {
			flag := opts.Flags.Lookup(FlagName(f.key))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(f.key, flag); err != nil {
				return nil, "", fmt.Errorf("failed to bind flag --%s: %w", flag.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if !opts.AllowIncomplete {
		if valid, errs := cfg.IsValid(); !valid {
			return nil, "", issue.NewErrorContext().
				WithOperation("validate configuration").
				WithSuggestionf("Set the model with --%s or %s", FlagName("model.model_name_or_path"), EnvName("model.model_name_or_path")).
				WithSuggestion("Make sure no path is made of whitespace only").
				Wrap(errors.Join(errs...)).
				BuildError()
		}
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadFileIntoViper reads a CUE or TOML config file, validates it against
// the #Config schema and merges its contents into v.
func loadFileIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var configMap map[string]any
	switch strings.ToLower(fspath.Ext(types.FilesystemPath(path))) {
	case ".toml":
		configMap, err = decodeTOML(data, path)
	default:
		configMap, err = decodeCUE(data, path)
	}
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// decodeCUE unifies data with #Config and decodes it into a map for Viper.
// Concrete(false) because every config field is optional.
func decodeCUE(data []byte, path string) (map[string]any, error) {
	result, err := cueutil.ParseAndDecodeString[map[string]any](
		configSchema, data, schemaRoot,
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}
	return *result.Value, nil
}

// decodeTOML decodes data with go-toml and checks the result against the same
// #Config schema used for CUE files.
func decodeTOML(data []byte, path string) (map[string]any, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	configMap := map[string]any{}
	if err := toml.Unmarshal(data, &configMap); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cueutil.ValidateValue([]byte(configSchema), configMap, schemaRoot,
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	); err != nil {
		return nil, err
	}

	return configMap, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file into dir (the config
// directory when dir is empty) unless one already exists. It returns the file
// path and whether it was created.
func CreateDefaultConfig(dir types.FilesystemPath) (string, bool, error) {
	cfgPath, err := configFilePath(dir)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := writeConfigFile(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}

	return cfgPath, true, nil
}

// Save writes cfg into dir (the config directory when dir is empty),
// replacing any existing config file. It returns the file path.
func Save(cfg *Config, dir types.FilesystemPath) (string, error) {
	cfgPath, err := configFilePath(dir)
	if err != nil {
		return "", err
	}

	if err := writeConfigFile(cfgPath, cfg); err != nil {
		return "", err
	}

	return cfgPath, nil
}

func configFilePath(dir types.FilesystemPath) (string, error) {
	cfgDir, err := configDirWithOverride(string(dir))
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

func writeConfigFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration.
// Empty optional strings are left out so they keep meaning "absent".
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// finetune configuration file\n")
	sb.WriteString("// Keys left out take their built-in defaults.\n\n")

	m := cfg.Model
	sb.WriteString("model: {\n")
	writeOptionalString(&sb, "model_name_or_path", string(m.ModelNameOrPath))
	writeOptionalString(&sb, "config_name", string(m.ConfigName))
	writeOptionalString(&sb, "tokenizer_name", string(m.TokenizerName))
	writeOptionalString(&sb, "cache_dir", string(m.CacheDir))
	fmt.Fprintf(&sb, "\tquantize_4bit: %v\n", m.Quantize4Bit)
	fmt.Fprintf(&sb, "\tuse_grad_checkpointing: %v\n", m.UseGradCheckpointing)
	fmt.Fprintf(&sb, "\ttrain_batch_size: %d\n", m.TrainBatchSize)
	fmt.Fprintf(&sb, "\ttrain_max_seq_length: %d\n", m.TrainMaxSeqLength)
	fmt.Fprintf(&sb, "\tuse_flash_attention: %v\n", m.UseFlashAttention)
	fmt.Fprintf(&sb, "\tgrad_acc_steps: %d\n", m.GradAccSteps)
	fmt.Fprintf(&sb, "\tseed: %d\n", m.Seed)
	fmt.Fprintf(&sb, "\tnew_model_name: %q\n", m.NewModelName)
	fmt.Fprintf(&sb, "\tnum_epochs: %d\n", m.NumEpochs)
	fmt.Fprintf(&sb, "\tlora_alpha: %d\n", m.LoraAlpha)
	fmt.Fprintf(&sb, "\tlora_r: %d\n", m.LoraR)
	sb.WriteString("}\n")

	d := cfg.Data
	sb.WriteString("\ndata: {\n")
	writeOptionalString(&sb, "train_dir", string(d.TrainDir))
	writeOptionalString(&sb, "dataset_name", string(d.DatasetName))
	fmt.Fprintf(&sb, "\tpassage_field_separator: %q\n", d.PassageFieldSeparator)
	fmt.Fprintf(&sb, "\tdataset_proc_num: %d\n", d.DatasetProcNum)
	fmt.Fprintf(&sb, "\ttrain_n_passages: %d\n", d.TrainNPassages)
	if len(d.EncodeInPath) > 0 {
		quoted := make([]string, len(d.EncodeInPath))
		for i, p := range d.EncodeInPath {
			quoted[i] = strconv.Quote(string(p))
		}
		fmt.Fprintf(&sb, "\tencode_in_path: [%s]\n", strings.Join(quoted, ", "))
	}
	writeOptionalString(&sb, "encoded_save_path", string(d.EncodedSavePath))
	fmt.Fprintf(&sb, "\tencode_is_qry: %v\n", d.EncodeIsQry)
	fmt.Fprintf(&sb, "\tencode_num_shard: %d\n", d.EncodeNumShard)
	fmt.Fprintf(&sb, "\tencode_shard_index: %d\n", d.EncodeShardIndex)
	fmt.Fprintf(&sb, "\tq_max_len: %d\n", d.QMaxLen)
	fmt.Fprintf(&sb, "\tp_max_len: %d\n", d.PMaxLen)
	writeOptionalString(&sb, "data_cache_dir", string(d.DataCacheDir))
	fmt.Fprintf(&sb, "\tcodemix_ratio: %s\n", formatFloat(d.CodemixRatio))
	fmt.Fprintf(&sb, "\tcodemix_sentence_ratio: %s\n", formatFloat(d.CodemixSentenceRatio))
	fmt.Fprintf(&sb, "\tcodemix_in_runtime: %v\n", d.CodemixInRuntime)
	fmt.Fprintf(&sb, "\tcm_loss_weight: %s\n", formatFloat(d.CmLossWeight))
	sb.WriteString("}\n")

	return sb.String()
}

func writeOptionalString(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "\t%s: %q\n", key, value)
}

// formatFloat always keeps a decimal point so CUE reads the value as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
