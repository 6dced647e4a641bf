// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every environment variable, so model.lora_r is
// read from FINETUNE_MODEL_LORA_R.
const EnvPrefix = "FINETUNE"

// field describes one configuration key. value reads the key from a Config
// as a bool, int, float64, string or []string.
type field struct {
	key   string
	usage string
	value func(*Config) any
}

var fields = []field{
	{"model.model_name_or_path", "path to pretrained model or model identifier from huggingface.co/models", func(c *Config) any { return string(c.Model.ModelNameOrPath) }},
	{"model.config_name", "pretrained config name or path if not the same as the model", func(c *Config) any { return string(c.Model.ConfigName) }},
	{"model.tokenizer_name", "pretrained tokenizer name or path if not the same as the model", func(c *Config) any { return string(c.Model.TokenizerName) }},
	{"model.cache_dir", "where to store downloaded pretrained models", func(c *Config) any { return string(c.Model.CacheDir) }},
	{"model.quantize_4bit", "load the model with 4-bit quantization", func(c *Config) any { return c.Model.Quantize4Bit }},
	{"model.use_grad_checkpointing", "enable gradient checkpointing", func(c *Config) any { return c.Model.UseGradCheckpointing }},
	{"model.train_batch_size", "per-device train batch size", func(c *Config) any { return c.Model.TrainBatchSize }},
	{"model.train_max_seq_length", "maximum train sequence length", func(c *Config) any { return c.Model.TrainMaxSeqLength }},
	{"model.use_flash_attention", "use flash attention", func(c *Config) any { return c.Model.UseFlashAttention }},
	{"model.grad_acc_steps", "gradient accumulation steps", func(c *Config) any { return c.Model.GradAccSteps }},
	{"model.seed", "random seed", func(c *Config) any { return c.Model.Seed }},
	{"model.new_model_name", "name of the fine-tuned model", func(c *Config) any { return c.Model.NewModelName }},
	{"model.num_epochs", "number of training epochs", func(c *Config) any { return c.Model.NumEpochs }},
	{"model.lora_alpha", "LoRA alpha", func(c *Config) any { return c.Model.LoraAlpha }},
	{"model.lora_r", "LoRA rank", func(c *Config) any { return c.Model.LoraR }},

	{"data.train_dir", "path to the train directory or file", func(c *Config) any { return string(c.Data.TrainDir) }},
	{"data.dataset_name", "dataset reference (name:language[:split] or org/name[/split])", func(c *Config) any { return string(c.Data.DatasetName) }},
	{"data.passage_field_separator", "separator between passage fields", func(c *Config) any { return c.Data.PassageFieldSeparator }},
	{"data.dataset_proc_num", "number of processes used in dataset preprocessing", func(c *Config) any { return c.Data.DatasetProcNum }},
	{"data.train_n_passages", "passages per training query", func(c *Config) any { return c.Data.TrainNPassages }},
	{"data.encode_in_path", "paths to data to encode", func(c *Config) any { return pathStrings(c.Data.EncodeInPath) }},
	{"data.encoded_save_path", "where to save the encoding", func(c *Config) any { return string(c.Data.EncodedSavePath) }},
	{"data.encode_is_qry", "encode queries instead of passages", func(c *Config) any { return c.Data.EncodeIsQry }},
	{"data.encode_num_shard", "number of encoding shards", func(c *Config) any { return c.Data.EncodeNumShard }},
	{"data.encode_shard_index", "index of the shard to encode", func(c *Config) any { return c.Data.EncodeShardIndex }},
	{"data.q_max_len", "maximum tokenized query length", func(c *Config) any { return c.Data.QMaxLen }},
	{"data.p_max_len", "maximum tokenized passage length", func(c *Config) any { return c.Data.PMaxLen }},
	{"data.data_cache_dir", "where to store datasets downloaded from huggingface", func(c *Config) any { return string(c.Data.DataCacheDir) }},
	{"data.codemix_ratio", "code-mixing ratio", func(c *Config) any { return c.Data.CodemixRatio }},
	{"data.codemix_sentence_ratio", "sentence-level code-mixing ratio", func(c *Config) any { return c.Data.CodemixSentenceRatio }},
	{"data.codemix_in_runtime", "apply code-mixing at runtime", func(c *Config) any { return c.Data.CodemixInRuntime }},
	{"data.cm_loss_weight", "code-mixing loss weight", func(c *Config) any { return c.Data.CmLossWeight }},
}

// Keys returns every configuration key in declaration order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Value returns the value of key in cfg, or false when key is unknown.
func Value(cfg *Config, key string) (any, bool) {
	for _, f := range fields {
		if f.key == key {
			return f.value(cfg), true
		}
	}
	return nil, false
}

// FlagName returns the command-line flag bound to key: the part after the
// group prefix with underscores replaced by dashes ("data.train_dir" is
// --train-dir).
func FlagName(key string) string {
	_, name, _ := strings.Cut(key, ".")
	return strings.ReplaceAll(name, "_", "-")
}

// EnvName returns the environment variable read for key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// RegisterFlags declares one flag per configuration key on fs, with the
// defaults of DefaultConfig. Pass fs as LoadOptions.Flags to bind them.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := DefaultConfig()
	for _, f := range fields {
		name := FlagName(f.key)
		switch def := f.value(defaults).(type) {
		case bool:
			fs.Bool(name, def, f.usage)
		case int:
			fs.Int(name, def, f.usage)
		case float64:
			fs.Float64(name, def, f.usage)
		case string:
			fs.String(name, def, f.usage)
		case []string:
			fs.StringSlice(name, def, f.usage)
		default:
			panic(fmt.Sprintf("config: unsupported default type %T for %s", def, f.key))
		}
	}
}

func pathStrings[P ~string](paths []P) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = string(p)
	}
	return out
}
