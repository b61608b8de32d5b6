package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"wallsorter/config"
	"wallsorter/matcher"
	"wallsorter/signalhandler"
)

// Commands lists the commands the tool understands
var Commands = []string{"duplicates", "similars", "edits", "all", "history", "undo"}

// ErrHelp is returned when usage was requested
var ErrHelp = pflag.ErrHelp

// Arguments holds the parsed command line
type Arguments struct {
	Command    string
	ConfigPath string
	RunID      string

	flags      *pflag.FlagSet
	dir        string
	hashSize   int
	similarity string
	workers    int
	database   string
	logFile    string
	debug      bool
	dryRun     bool
	autoOrient bool
}

// ParseArguments parses args, the command line without the program name
func ParseArguments(args []string) (*Arguments, error) {
	a := &Arguments{}
	fs := pflag.NewFlagSet("wallsorter", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&a.dir, "dir", "", "folder holding the wallpapers (default: working directory)")
	fs.StringVar(&a.ConfigPath, "config", "", "TOML configuration file")
	fs.IntVar(&a.hashSize, "hash-size", config.CLIHashSize, "side of the average hash grid")
	fs.StringVar(&a.similarity, "similarity", "80", "similarity percentage in (0, 100]")
	fs.IntVar(&a.workers, "workers", 0, "worker goroutines (default: one per CPU)")
	fs.StringVar(&a.database, "database", "", "move journal database")
	fs.StringVar(&a.logFile, "logfile", "", "log file path")
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&a.dryRun, "dry-run", false, "report moves without making them")
	fs.BoolVar(&a.autoOrient, "auto-orient", false, "apply EXIF orientation before hashing")
	fs.StringVar(&a.RunID, "run", "", "run id for history and undo (default: latest run)")
	a.flags = fs

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() == 0 {
		return nil, errors.New("missing command")
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args()[1:], " "))
	}

	a.Command = fs.Arg(0)
	if !isCommand(a.Command) {
		return nil, fmt.Errorf("unknown command: %s", a.Command)
	}
	return a, nil
}

func isCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

// Apply overrides cfg with the flags given on the command line
func (a *Arguments) Apply(cfg *config.Config) error {
	changed := a.flags.Changed

	if changed("dir") {
		cfg.Dir = a.dir
	}
	if changed("hash-size") {
		cfg.HashSize = a.hashSize
	}
	if changed("similarity") {
		pct, err := ParsePercentage(a.similarity)
		if err != nil {
			return &config.ConfigurationError{Field: "similarity", Value: a.similarity, Reason: err}
		}
		cfg.SimilarityPercentage = pct
	}
	if changed("workers") {
		cfg.Workers = a.workers
	}
	if changed("database") {
		cfg.Database = a.database
	}
	if changed("logfile") {
		cfg.LogFile = a.logFile
	}
	if changed("debug") {
		cfg.Debug = a.debug
	}
	if changed("dry-run") {
		cfg.DryRun = a.dryRun
	}
	if changed("auto-orient") {
		cfg.AutoOrient = a.autoOrient
	}
	return nil
}

// LoadConfig builds the configuration of a run: defaults, then the TOML file,
// then WALLSORTER_* variables (a .env file included), then flags
func LoadConfig(a *Arguments) (*config.Config, error) {
	cfg := config.Default()
	cfg.HashSize = config.CLIHashSize

	if a.ConfigPath != "" {
		if err := cfg.MergeFile(a.ConfigPath); err != nil {
			return nil, err
		}
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := a.Apply(cfg); err != nil {
		return nil, err
	}

	if cfg.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.Dir = wd
	}
	if cfg.Database == "" {
		cfg.Database = GetDefaultDatabasePath()
	}
	if cfg.Workers == 0 {
		cfg.Workers = signalhandler.GetOptimalProcs()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDefaultDatabasePath returns the default path for the database file
func GetDefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "wallsorter.db"
	}
	return filepath.Join(filepath.Dir(exePath), "wallsorter.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s duplicates [--dir=PATH] [--hash-size=N] [--dry-run]\n", name)
	fmt.Fprintf(w, "  %s similars [--dir=PATH] [--similarity=P] [--hash-size=N] [--workers=N] [--dry-run]\n", name)
	fmt.Fprintf(w, "  %s edits [--dir=PATH] [--dry-run]\n", name)
	fmt.Fprintf(w, "  %s all [--dir=PATH] [--similarity=P] [--dry-run]\n", name)
	fmt.Fprintf(w, "  %s history [--run=ID]\n", name)
	fmt.Fprintf(w, "  %s undo [--run=ID] [--dry-run]\n", name)
	fmt.Fprintf(w, "\nParameters:\n")
	fmt.Fprintf(w, "  --dir         : Folder holding the wallpapers (default: working directory)\n")
	fmt.Fprintf(w, "  --config      : TOML configuration file\n")
	fmt.Fprintf(w, "  --hash-size   : Side of the average hash grid (default: %d)\n", config.CLIHashSize)
	fmt.Fprintf(w, "  --similarity  : Similarity percentage, 1-100 (default: 80)\n")
	fmt.Fprintf(w, "  --workers     : Worker goroutines (default: %d)\n", signalhandler.GetOptimalProcs())
	fmt.Fprintf(w, "  --database    : Move journal (default: %s)\n", GetDefaultDatabasePath())
	fmt.Fprintf(w, "  --logfile     : Log file path (default: wallsorter.log with --debug)\n")
	fmt.Fprintf(w, "  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Fprintf(w, "  --dry-run     : Report what would move without moving anything\n")
	fmt.Fprintf(w, "  --auto-orient : Apply EXIF orientation before hashing\n")
	fmt.Fprintf(w, "  --run         : Run id for history and undo (default: latest run)\n")
	fmt.Fprintf(w, "\nEnvironment variables %s* (also read from .env) override the config file.\n", config.EnvPrefix)
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  %s similars --dir=/path/to/wallpapers --similarity=90\n", name)
	fmt.Fprintf(w, "  %s undo\n", name)
}

// ParsePercentage parses a similarity percentage such as "80" or "80%"
func ParsePercentage(s string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	pct, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage '%s': %w", s, err)
	}
	if err := matcher.ValidatePercentage(pct); err != nil {
		return 0, err
	}
	return pct, nil
}
