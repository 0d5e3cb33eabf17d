package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/absfs/notecrypt"
)

func (a *app) newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create an empty note and print its ID",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Create(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.io.Out, n.ID())
			return nil
		},
	}
}

func (a *app) editCommand() *cobra.Command {
	var (
		file string
		text string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the content of a plain note",
		Long: `Replaces the content of a plain note. Locked notes cannot be edited.

Examples:
  notecrypt edit <id> --text "Hello <b>World</b>"
  notecrypt edit <id> --file draft.html
  cat draft.html | notecrypt edit <id> --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (text == "") {
				return notecrypt.NewValidationError("content", nil, "exactly one of --file or --text is required")
			}

			content := text
			if file != "" {
				b, err := a.readContentFile(file)
				if err != nil {
					return err
				}
				content = string(b)
			}
			return a.store.Edit(args[0], content)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read content from a file, - for stdin")
	cmd.Flags().StringVar(&text, "text", "", "content to store")
	return cmd
}

func (a *app) readContentFile(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(a.io.In)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, notecrypt.NewIOError("read", file, err)
	}
	return b, nil
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note, or a notice when it is locked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			content, err := a.store.Gate().Content(n)
			if errors.Is(err, notecrypt.ErrNoteLocked) {
				fmt.Fprintf(a.io.Out, "%s is locked. Run 'notecrypt unlock %s' to read it.\n", n.Snapshot().Title, n.ID())
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.io.Out, content)
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.io.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tPINNED\tTITLE")
			for _, n := range notes {
				snap := n.Snapshot()
				pinned := ""
				if snap.Pinned {
					pinned = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", snap.ID, n.State(), pinned, snap.Title)
			}
			return w.Flush()
		},
	}
}

func (a *app) pinCommand() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a note to the top of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Get(args[0])
			if err != nil {
				return err
			}
			n.SetPinned(!off)
			return a.store.Save(n)
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "unpin instead")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Delete(args[0])
		},
	}
}

func (a *app) lockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lock <id>",
		Short: "Encrypt a note with a passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := a.readNewPassphrase("Passphrase")
			if err != nil {
				return err
			}
			defer pass.Destroy()

			if err := a.store.Lock(args[0], pass); err != nil {
				return err
			}
			fmt.Fprintln(a.io.Out, "locked")
			return nil
		},
	}
}

func (a *app) unlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <id>",
		Short: "Decrypt a locked note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := a.readPassphrase("Passphrase")
			if err != nil {
				return err
			}
			defer pass.Destroy()

			if err := a.store.Unlock(args[0], pass); err != nil {
				return err
			}
			fmt.Fprintln(a.io.Out, "unlocked")
			return nil
		},
	}
}

func (a *app) rekeyCommand() *cobra.Command {
	var newFile string
	cmd := &cobra.Command{
		Use:   "rekey <id>",
		Short: "Change the passphrase of a locked note",
		Long: `Re-encrypts a locked note under a new passphrase without ever storing
it unlocked. With a passphrase file, the new passphrase must come from
--new-passphrase-file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPass, err := a.readPassphrase("Current passphrase")
			if err != nil {
				return err
			}
			defer oldPass.Destroy()

			var newPass *notecrypt.Passphrase
			switch {
			case newFile != "":
				newPass, err = readPassphraseFile(newFile)
			case a.cfg.PassphraseFile != "":
				err = notecrypt.NewValidationError("new-passphrase-file", nil, "required when the passphrase comes from a file")
			default:
				newPass, err = a.promptConfirmed("New passphrase")
			}
			if err != nil {
				return err
			}
			defer newPass.Destroy()

			if err := a.store.Rekey(args[0], oldPass, newPass); err != nil {
				return err
			}
			fmt.Fprintln(a.io.Out, "passphrase changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&newFile, "new-passphrase-file", "", "read the new passphrase from this file")
	return cmd
}

func (a *app) probeCommand() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report whether stdin holds an encrypted envelope",
		Long: `Reads all of stdin and exits 0 if it is a notecrypt envelope, 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := io.ReadAll(a.io.In)
			if err != nil {
				return err
			}

			encrypted := notecrypt.IsContentEncrypted(string(b))
			if !quiet {
				if encrypted {
					fmt.Fprintln(a.io.Out, "encrypted")
				} else {
					fmt.Fprintln(a.io.Out, "plain")
				}
			}
			if !encrypted {
				return errProbeNegative
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing, only set the exit code")
	return cmd
}
