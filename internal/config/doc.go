// Package config defines the format-agnostic configuration model of monox,
// along with the loaders that fill it from files, the environment and
// command-line overrides.
//
// The resolved Model is an immutable value handed to the orchestrator and the
// renderer. Sources are applied in this order, later ones winning:
//
//  1. Defaults()
//  2. the config file (monox.hcl through HCLLoader, monox.yaml through
//     YAMLLoader)
//  3. a .env file in the working directory
//  4. MONOX_* process environment variables
//  5. RuntimeOverrides built from command-line flags
package config
