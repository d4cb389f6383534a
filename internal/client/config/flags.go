package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   server address
//	-r duration reminder check interval
//	-n duration unread badge refresh interval
//	-z string   time zone
//	-db string  local database path
//	-k string   keyring service name
//	-kd string  keyring file directory
//	-log string log file ("" logs to stderr)
//	-l string   log level
//	-o string   directory for downloaded audit exports
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-n", "-z", "-db", "-k", "-kd", "-log", "-l", "-o"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server address and port")
	fs.DurationVar(&config.ReminderInterval, "r", config.ReminderInterval, "reminder check interval")
	fs.DurationVar(&config.UnreadRefreshInterval, "n", config.UnreadRefreshInterval, "unread count refresh interval")
	fs.StringVar(&config.TimeZone, "z", config.TimeZone, "time zone")
	fs.StringVar(&config.DatabasePath, "db", config.DatabasePath, "local database path")
	fs.StringVar(&config.KeyringService, "k", config.KeyringService, "keyring service name")
	fs.StringVar(&config.KeyringDir, "kd", config.KeyringDir, "keyring file directory")
	fs.StringVar(&config.LogFile, "log", config.LogFile, "log file")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.ExportDir, "o", config.ExportDir, "audit export download directory")

	return fs.Parse(args)
}
