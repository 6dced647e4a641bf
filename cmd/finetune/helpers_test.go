// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"

	"github.com/spf13/afero"
)

// stubProvider returns a copy of cfg (or err) and records each load.
type stubProvider struct {
	cfg   *config.Config
	err   error
	loads []config.LoadOptions
}

func (p *stubProvider) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	p.loads = append(p.loads, opts)
	if p.err != nil {
		return nil, p.err
	}
	cfg := *p.cfg
	return &cfg, nil
}

func newStubProvider() *stubProvider {
	cfg := config.DefaultConfig()
	cfg.Model.ModelNameOrPath = "CohereForAI/aya-23-8B"
	return &stubProvider{cfg: cfg}
}

// runCLI runs the command tree with args and returns what it printed. Not
// parallel-safe: the root command replaces the default slog logger.
func runCLI(t *testing.T, deps Dependencies, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	if deps.Fs == nil {
		deps.Fs = afero.NewMemMapFs()
	}
	var out, errOut bytes.Buffer
	deps.Stdout = &out
	deps.Stderr = &errOut

	rootCmd := NewRootCommand(NewApp(deps))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
