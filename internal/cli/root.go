// Package cli implements the notecrypt command line.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/absfs/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/absfs/notecrypt"
	"github.com/absfs/notecrypt/internal/config"
	"github.com/absfs/notecrypt/internal/logger"
)

// notesDir is the directory under the data dir holding note documents
const notesDir = "notes"

// errProbeNegative makes probe exit 1 without printing an error
var errProbeNegative = errors.New("not an envelope")

// IO bundles the streams a command reads and writes
type IO struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

type app struct {
	io  IO
	env map[string]string // nil reads the process environment

	cfg   *config.Config
	log   zerolog.Logger
	store *notecrypt.Store

	lines *bufio.Reader

	flagDir            string
	flagLogLevel       string
	flagPassphraseFile string
}

// Main runs the CLI and returns the process exit code
func Main(args []string, streams IO) int {
	return run(args, streams, nil)
}

func run(args []string, streams IO, env map[string]string) int {
	a := &app{io: streams, env: env, log: logger.Nop()}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	if err := root.Execute(); err != nil {
		if errors.Is(err, errProbeNegative) {
			return 1
		}
		fmt.Fprintf(streams.ErrOut, "notecrypt: %s\n", notecrypt.UserMessage(err))
		a.log.Debug().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "notecrypt",
		Short: "Lock notes behind a passphrase",
		Long: `notecrypt stores notes in a local directory and encrypts individual
notes with a passphrase. Locked notes are stored only as encrypted envelopes.

Environment:
  NOTECRYPT_DIR              note directory (default ~/.notecrypt)
  NOTECRYPT_LOG_LEVEL        log level (default warn)
  NOTECRYPT_PASSPHRASE_FILE  read the passphrase from this file`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flagDir, "dir", "", "note directory (overrides NOTECRYPT_DIR)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "log level (overrides NOTECRYPT_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.flagPassphraseFile, "passphrase-file", "", "passphrase file (overrides NOTECRYPT_PASSPHRASE_FILE)")

	root.AddCommand(
		a.newCommand(),
		a.editCommand(),
		a.showCommand(),
		a.listCommand(),
		a.pinCommand(),
		a.deleteCommand(),
		a.lockCommand(),
		a.unlockCommand(),
		a.rekeyCommand(),
		a.probeCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and opens the store
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "probe", "help", "completion":
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.env != nil {
		cfg, err = config.LoadFrom(a.env)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.flagDir != "" {
		cfg.Dir = a.flagDir
	}
	if a.flagLogLevel != "" {
		cfg.LogLevel = a.flagLogLevel
	}
	if a.flagPassphraseFile != "" {
		cfg.PassphraseFile = a.flagPassphraseFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, _ := cfg.Level()
	a.cfg = cfg
	a.log = logger.New(a.io.ErrOut, lvl)

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return notecrypt.NewIOError("open", cfg.Dir, err)
	}
	fs, err := osfs.NewFS()
	if err != nil {
		return notecrypt.NewIOError("open", dir, err)
	}
	root := path.Join(filepath.ToSlash(dir), notesDir)
	a.store, err = notecrypt.NewStore(fs, root, notecrypt.WithLogger(a.log))
	if err != nil {
		return err
	}

	a.log.Debug().Str("dir", cfg.Dir).Str("command", cmd.Name()).Msg("store ready")
	return nil
}

// stdinFile returns the input as a file when it is one
func (a *app) stdinFile() (*os.File, bool) {
	f, ok := a.io.In.(*os.File)
	return f, ok
}
