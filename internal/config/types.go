// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/dataset"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"
)

const (
	// DefaultNewModelName is the name given to the fine-tuned adapter.
	DefaultNewModelName = "my-qlora-model"
	// DefaultPassageFieldSeparator joins passage fields into one string.
	DefaultPassageFieldSeparator = " "
)

var (
	// ErrInvalidModelReference is the sentinel error wrapped by InvalidModelReferenceError.
	ErrInvalidModelReference = errors.New("invalid model reference")
	// ErrInvalidModelArguments is the sentinel error wrapped by InvalidModelArgumentsError.
	ErrInvalidModelArguments = errors.New("invalid model arguments")
	// ErrInvalidDataArguments is the sentinel error wrapped by InvalidDataArgumentsError.
	ErrInvalidDataArguments = errors.New("invalid data arguments")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ModelReference is a hub model identifier ("CohereForAI/aya-23-8B") or a
	// local checkpoint path. It is not checked against any registry.
	ModelReference string

	// InvalidModelReferenceError is returned when a ModelReference is required
	// but empty, or set but whitespace-only.
	InvalidModelReferenceError struct {
		Field string
		Value ModelReference
	}

	// InvalidModelArgumentsError collects the field errors of ModelArguments.
	// It wraps ErrInvalidModelArguments for errors.Is() compatibility.
	InvalidModelArgumentsError struct {
		FieldErrors []error
	}

	// InvalidDataArgumentsError collects the field errors of DataArguments.
	// It wraps ErrInvalidDataArguments for errors.Is() compatibility.
	InvalidDataArgumentsError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// the errors of both argument groups.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the full fine-tuning configuration.
	Config struct {
		Model ModelArguments `json:"model" toml:"model" mapstructure:"model"`
		Data  DataArguments  `json:"data" toml:"data" mapstructure:"data"`
	}

	// ModelArguments describes the model to load and the QLoRA training
	// hyperparameters.
	ModelArguments struct {
		// ModelNameOrPath is required.
		ModelNameOrPath ModelReference `json:"model_name_or_path" toml:"model_name_or_path" mapstructure:"model_name_or_path"`
		// ConfigName falls back to ModelNameOrPath when empty.
		ConfigName ModelReference `json:"config_name" toml:"config_name" mapstructure:"config_name"`
		// TokenizerName falls back to ModelNameOrPath when empty.
		TokenizerName ModelReference `json:"tokenizer_name" toml:"tokenizer_name" mapstructure:"tokenizer_name"`
		// CacheDir is where downloaded models are stored.
		CacheDir types.FilesystemPath `json:"cache_dir" toml:"cache_dir" mapstructure:"cache_dir"`

		Quantize4Bit         bool   `json:"quantize_4bit" toml:"quantize_4bit" mapstructure:"quantize_4bit"`
		UseGradCheckpointing bool   `json:"use_grad_checkpointing" toml:"use_grad_checkpointing" mapstructure:"use_grad_checkpointing"`
		TrainBatchSize       int    `json:"train_batch_size" toml:"train_batch_size" mapstructure:"train_batch_size"`
		TrainMaxSeqLength    int    `json:"train_max_seq_length" toml:"train_max_seq_length" mapstructure:"train_max_seq_length"`
		UseFlashAttention    bool   `json:"use_flash_attention" toml:"use_flash_attention" mapstructure:"use_flash_attention"`
		GradAccSteps         int    `json:"grad_acc_steps" toml:"grad_acc_steps" mapstructure:"grad_acc_steps"`
		Seed                 int    `json:"seed" toml:"seed" mapstructure:"seed"`
		NewModelName         string `json:"new_model_name" toml:"new_model_name" mapstructure:"new_model_name"`
		NumEpochs            int    `json:"num_epochs" toml:"num_epochs" mapstructure:"num_epochs"`
		LoraAlpha            int    `json:"lora_alpha" toml:"lora_alpha" mapstructure:"lora_alpha"`
		LoraR                int    `json:"lora_r" toml:"lora_r" mapstructure:"lora_r"`
	}

	// DataArguments describes where training data comes from and how it is
	// encoded.
	DataArguments struct {
		// TrainDir is a directory of JSON/JSONL files or a single file path.
		// Empty means absent.
		TrainDir types.FilesystemPath `json:"train_dir" toml:"train_dir" mapstructure:"train_dir"`
		// DatasetName is the raw dataset reference. Empty selects local JSON files.
		DatasetName dataset.Spec `json:"dataset_name" toml:"dataset_name" mapstructure:"dataset_name"`

		PassageFieldSeparator string `json:"passage_field_separator" toml:"passage_field_separator" mapstructure:"passage_field_separator"`
		DatasetProcNum        int    `json:"dataset_proc_num" toml:"dataset_proc_num" mapstructure:"dataset_proc_num"`
		TrainNPassages        int    `json:"train_n_passages" toml:"train_n_passages" mapstructure:"train_n_passages"`

		EncodeInPath     []types.FilesystemPath `json:"encode_in_path" toml:"encode_in_path" mapstructure:"encode_in_path"`
		EncodedSavePath  types.FilesystemPath   `json:"encoded_save_path" toml:"encoded_save_path" mapstructure:"encoded_save_path"`
		EncodeIsQry      bool                   `json:"encode_is_qry" toml:"encode_is_qry" mapstructure:"encode_is_qry"`
		EncodeNumShard   int                    `json:"encode_num_shard" toml:"encode_num_shard" mapstructure:"encode_num_shard"`
		EncodeShardIndex int                    `json:"encode_shard_index" toml:"encode_shard_index" mapstructure:"encode_shard_index"`

		// QMaxLen and PMaxLen are the tokenized query and passage lengths.
		QMaxLen int `json:"q_max_len" toml:"q_max_len" mapstructure:"q_max_len"`
		PMaxLen int `json:"p_max_len" toml:"p_max_len" mapstructure:"p_max_len"`
		// DataCacheDir is where downloaded datasets are stored.
		DataCacheDir types.FilesystemPath `json:"data_cache_dir" toml:"data_cache_dir" mapstructure:"data_cache_dir"`

		CodemixRatio         float64 `json:"codemix_ratio" toml:"codemix_ratio" mapstructure:"codemix_ratio"`
		CodemixSentenceRatio float64 `json:"codemix_sentence_ratio" toml:"codemix_sentence_ratio" mapstructure:"codemix_sentence_ratio"`
		CodemixInRuntime     bool    `json:"codemix_in_runtime" toml:"codemix_in_runtime" mapstructure:"codemix_in_runtime"`
		CmLossWeight         float64 `json:"cm_loss_weight" toml:"cm_loss_weight" mapstructure:"cm_loss_weight"`
	}
)

// String returns the string representation of the ModelReference.
func (r ModelReference) String() string { return string(r) }

// IsValid returns whether the ModelReference is valid as an optional value.
// The zero value is valid; non-zero values must not be whitespace-only.
func (r ModelReference) IsValid() (bool, []error) {
	if r == "" {
		return true, nil
	}
	if strings.TrimSpace(string(r)) == "" {
		return false, []error{&InvalidModelReferenceError{Value: r}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModelReferenceError.
func (e *InvalidModelReferenceError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid model reference %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidModelReference for errors.Is() compatibility.
func (e *InvalidModelReferenceError) Unwrap() error { return ErrInvalidModelReference }

// EffectiveConfigName returns ConfigName, or ModelNameOrPath when unset.
func (m ModelArguments) EffectiveConfigName() ModelReference {
	if m.ConfigName != "" {
		return m.ConfigName
	}
	return m.ModelNameOrPath
}

// EffectiveTokenizerName returns TokenizerName, or ModelNameOrPath when unset.
func (m ModelArguments) EffectiveTokenizerName() ModelReference {
	if m.TokenizerName != "" {
		return m.TokenizerName
	}
	return m.ModelNameOrPath
}

// IsValid returns whether the ModelArguments have valid fields.
// ModelNameOrPath must be set; the optional references and CacheDir must not
// be whitespace-only. Numeric fields are not range-checked.
func (m ModelArguments) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(string(m.ModelNameOrPath)) == "" {
		errs = append(errs, &InvalidModelReferenceError{Field: "model_name_or_path", Value: m.ModelNameOrPath})
	}
	for _, ref := range []ModelReference{m.ConfigName, m.TokenizerName} {
		if valid, fieldErrs := ref.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := m.CacheDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidModelArgumentsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModelArgumentsError.
func (e *InvalidModelArgumentsError) Error() string {
	return fmt.Sprintf("invalid model arguments: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidModelArguments for errors.Is() compatibility.
func (e *InvalidModelArgumentsError) Unwrap() error { return ErrInvalidModelArguments }

// IsValid returns whether the DataArguments have valid fields.
// Only paths are checked; the dataset reference is validated by resolution.
func (d DataArguments) IsValid() (bool, []error) {
	var errs []error
	paths := append([]types.FilesystemPath{d.TrainDir, d.EncodedSavePath, d.DataCacheDir}, d.EncodeInPath...)
	for _, p := range paths {
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDataArgumentsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDataArgumentsError.
func (e *InvalidDataArgumentsError) Error() string {
	return fmt.Sprintf("invalid data arguments: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidDataArguments for errors.Is() compatibility.
func (e *InvalidDataArgumentsError) Unwrap() error { return ErrInvalidDataArguments }

// IsValid returns whether the Config has valid fields.
// It delegates to Model.IsValid() and Data.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Model.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Data.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinFieldErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the default configuration. ModelNameOrPath is left
// empty and must be supplied by the user.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelArguments{
			Quantize4Bit:         true,
			UseGradCheckpointing: true,
			TrainBatchSize:       16,
			TrainMaxSeqLength:    512,
			UseFlashAttention:    true,
			GradAccSteps:         2,
			Seed:                 42,
			NewModelName:         DefaultNewModelName,
			NumEpochs:            1,
			LoraAlpha:            32,
			LoraR:                32,
		},
		Data: DataArguments{
			PassageFieldSeparator: DefaultPassageFieldSeparator,
			DatasetProcNum:        96,
			TrainNPassages:        2,
			EncodeNumShard:        1,
			EncodeShardIndex:      0,
			QMaxLen:               512,
			PMaxLen:               128,
			CodemixRatio:          0.0,
			CodemixSentenceRatio:  0.0,
			CodemixInRuntime:      true,
			CmLossWeight:          0.0,
		},
	}
}
