// Package confloader loads configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (FASTUTIL_ prefix)
//  4. Explicit values, typically command-line flags, via LoadMap
//
// Environment names map to keys by lowercasing and turning a double
// underscore into a level separator, so FASTUTIL_STORAGE__IN_MEMORY sets
// storage.in_memory.
//
// Watcher notifies callbacks when a watched file changes; the CLI uses it to
// re-read the log level without restarting a long benchmark run.
package confloader
