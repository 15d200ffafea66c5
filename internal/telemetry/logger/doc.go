// Package logger configures structured logging.
//
// It builds log/slog handlers from a small Config, keeps one process-wide
// level that can be changed at runtime (the config watcher does this), and
// redacts attributes whose keys name secrets such as snapshot sealing keys
// and passphrases.
//
// Components receive a *slog.Logger; context helpers carry a logger and a
// workload run ID through call chains.
package logger
