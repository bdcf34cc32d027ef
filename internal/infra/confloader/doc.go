// Package confloader provides configuration loading for sessprobe.
//
// Configuration is assembled from, in increasing priority:
//
//   - defaults baked into the config structs
//   - a YAML file (e.g. config/environments/local.yaml)
//   - SESSPROBE_* environment variables
//   - CLI flag overrides merged via LoadMap
//
// A companion fsnotify-based Watcher lets long load runs react to
// config file edits (currently: log level) without a restart.
package confloader
