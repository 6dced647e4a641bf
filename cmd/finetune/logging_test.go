// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, false)
	logger.Debug("hidden detail")
	logger.Info("resolved dataset", "name", "squad")

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Errorf("debug message logged without verbose: %q", out)
	}
	for _, want := range []string{"finetune", "resolved dataset", "squad"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}

	buf.Reset()
	newLogger(&buf, true).Debug("shown detail")
	if !strings.Contains(buf.String(), "shown detail") {
		t.Errorf("verbose logger dropped debug message: %q", buf.String())
	}
}
