// Package main hosts the ocwrap CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves layered configuration once per
// invocation and hands it to the dispatcher that launches the opencode
// agent. It centralizes configuration resolution, logger setup, and exit
// code mapping so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
