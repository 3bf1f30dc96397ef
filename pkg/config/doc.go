// Package config loads, validates and writes the agentconfig.yaml file
// kept at the root of the canonical source tree. Parsing happens once at
// the boundary; the sync engine only ever sees a fully-typed, validated
// Config value. Agent declaration order is preserved because it determines
// mapping resolution order.
package config
