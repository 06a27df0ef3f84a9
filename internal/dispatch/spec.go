package dispatch

import (
	"os"

	"ocwrap/internal/config"
)

// Spec is the fully derived launch plan for one invocation. It is built
// fresh from the resolved configuration every time and never persisted.
type Spec struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

func newSpec(cfg *config.Resolved, executable string, passthrough []string) Spec {
	flags := cfg.ForwardedFlags()
	args := make([]string, 0, len(flags)+len(passthrough))
	args = append(args, flags...)
	args = append(args, passthrough...)

	return Spec{
		Path: executable,
		Args: args,
		Env:  append(os.Environ(), cfg.SecretEnv()...),
		Dir:  cfg.Agent.WorkspaceDir,
	}
}
