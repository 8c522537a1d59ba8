// Package config resolves per-project settings for port resolution.
//
// Settings come from four places, highest precedence first:
//
//  1. CLI flags (applied by the cli package on top of Load's result)
//  2. the PORTKEEP_BASE_PORT environment variable (base port only)
//  3. the project's .portkeep.yml file
//  4. a base-port hint from the project's devcontainer.json
//
// Anything still unset falls back to the resolver defaults (base port
// 3000, 20 attempts, 10s shutdown timeout). Settings records where its
// base port came from so the status command can explain itself.
package config
