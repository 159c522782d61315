// Package config loads, normalizes, and validates nbr configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the NBR_LOG_LEVEL environment override. Command
// code obtains every setting through Load so downstream packages receive
// absolute paths, canonical enum values, and clear validation errors.
package config
