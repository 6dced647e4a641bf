// SPDX-License-Identifier: MPL-2.0

// Command finetune resolves the configuration of a QLoRA fine-tuning run.
package main

import cmd "github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/cmd/finetune"

func main() {
	cmd.Execute()
}
