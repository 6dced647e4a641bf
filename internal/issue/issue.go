// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ConfigFileNotFoundId
	ConfigLoadFailedId
	InvalidConfigId
	EnvFileLoadFailedId
	DatasetSpecMalformedId
	TrainPathUnreadableId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the project docs
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file given on the command line does not exist.

## Things you can try:
- Check the path for typos
- Use an absolute path or run the command from the directory that holds the file`,
	}

	configFileNotFoundIssue = &Issue{
		id: ConfigFileNotFoundId,
		mdMsg: `
# Configuration file not found!

The file passed with ` + "`--config`" + ` does not exist.

## Search locations when --config is not given (in order of precedence):
1. The user config directory (` + "`~/.config/finetune/config.cue`" + ` on Linux)
2. ` + "`./finetune.cue`" + `
3. ` + "`./finetune.toml`" + `

## Things you can try:
- Create a default configuration:
~~~
$ finetune config init
~~~

- Print where finetune looks for its configuration:
~~~
$ finetune config path
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be parsed or does not match the schema.

## Things you can try:
- Check the file for syntax errors
- Compare it with the defaults:
~~~
$ finetune config dump
~~~

## Example configuration:
~~~cue
model: {
	model_name_or_path: "CohereForAI/aya-23-8B"
	cache_dir:          "/tmp/hf"
}
data: {
	dataset_name: "squad:en:train"
	train_dir:    "./data/train"
	q_max_len:    512
}
~~~`,
	}

	invalidConfigIssue = &Issue{
		id: InvalidConfigId,
		mdMsg: `
# Invalid configuration!

The merged configuration failed validation.

## Things you can try:
- Set the model to fine-tune, it is required:
~~~
$ finetune resolve --model-name-or-path CohereForAI/aya-23-8B
~~~

- Or set it through the environment:
~~~
$ export FINETUNE_MODEL_MODEL_NAME_OR_PATH=CohereForAI/aya-23-8B
~~~

- Paths must not be made of whitespace only`,
	}

	envFileLoadFailedIssue = &Issue{
		id: EnvFileLoadFailedId,
		mdMsg: `
# Failed to load the env file!

The file passed with ` + "`--env-file`" + ` could not be read.

## Things you can try:
- Make sure every line has the form ` + "`KEY=value`" + `
- Keys use the ` + "`FINETUNE_`" + ` prefix, for example:
~~~
FINETUNE_DATA_DATASET_NAME=squad:en:validation
FINETUNE_DATA_TRAIN_DIR=./data/train
~~~`,
	}

	datasetSpecMalformedIssue = &Issue{
		id: DatasetSpecMalformedId,
		mdMsg: `
# Malformed dataset reference!

The dataset reference could not be split into name, language and split.

## Accepted forms:
- ` + "`name:language`" + `, the split defaults to ` + "`train`" + `
- ` + "`name:language:split`" + `
- ` + "`org/name/split`" + `, the language defaults to ` + "`default`" + `
- ` + "`org/name`" + ` or ` + "`name`" + `, both language and split take defaults

## Things you can try:
~~~
$ finetune dataset parse squad:en:validation
$ finetune dataset parse org/squad/validation
~~~

- Leave the reference empty to train on local JSON files from ` + "`--train-dir`" + ``,
		extLinks: []HttpLink{"https://huggingface.co/docs/datasets/loading"},
	}

	trainPathUnreadableIssue = &Issue{
		id: TrainPathUnreadableId,
		mdMsg: `
# Train path could not be read!

The train path exists but checking or listing it failed.

## Things you can try:
- Check the permissions of the directory
- The directory should hold ` + "`.json`" + ` or ` + "`.jsonl`" + ` files at its top level:
~~~
$ finetune dataset files ./data/train
~~~`,
		extLinks: []HttpLink{"https://huggingface.co/docs/datasets/loading#json"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

finetune does not have permission to access a required file or directory.

## Things you can try:
- Check the permissions of the file:
~~~
$ ls -la <file>
~~~

- Make sure the config directory is writable before running ` + "`finetune config init`" + ``,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():         fileNotFoundIssue,
		configFileNotFoundIssue.Id():   configFileNotFoundIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidConfigIssue.Id():        invalidConfigIssue,
		envFileLoadFailedIssue.Id():    envFileLoadFailedIssue,
		datasetSpecMalformedIssue.Id(): datasetSpecMalformedIssue,
		trainPathUnreadableIssue.Id():  trainPathUnreadableIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
