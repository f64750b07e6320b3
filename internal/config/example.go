package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# TaskBoard configuration file
# Values can be overridden by TASKBOARD_* environment variables or CLI flags

# Data directory (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.taskboard"

# Storage backend for the task list: file, sqlite or memory
# file keeps the list in <data_dir>/store/tasks
# sqlite keeps it in <data_dir>/taskboard.db
# memory keeps nothing once the process exits
storage = "file"

# Log directory (default: <data_dir>/logs)
# log_dir = "~/.taskboard/logs"

# Logging: level is debug, info, warn or error; format is text, json or logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
