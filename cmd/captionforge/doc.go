// Package main hosts the captionforge CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into caption jobs run
// in-process: single renders, TOML batch manifests, font catalog listings,
// result cache maintenance, and configuration scaffolding. Configuration,
// logging, and collaborator wiring are resolved lazily by commandContext so
// commands that do not need a pipeline stay fast.
//
// Add behavior to the internal packages first and surface it here through
// dedicated commands or flags.
package main
