package config

import (
	"flag"
	"os"
	"time"

	"github.com/famvault/famvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-r string   base URL of the archive backend (default from Config)
//	-d string   path to the local database file
//	-k string   archive key
//	-g string   gate phrase (empty disables the gate)
//	-i int      online check interval in seconds
//	-p int      subscription poll interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-d", "-k", "-g", "-i", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RemoteBaseURL, "r", cfg.RemoteBaseURL, "base URL of the archive backend")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.ArchiveKey, "k", cfg.ArchiveKey, "archive key")
	fs.StringVar(&cfg.GatePhrase, "g", cfg.GatePhrase, "gate phrase (empty disables the gate)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "subscription poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
