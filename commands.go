package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	boardtypes "github.com/Yulian302/lfusys-wetransfer/boards/types"
	"github.com/Yulian302/lfusys-wetransfer/client"
	"github.com/Yulian302/lfusys-wetransfer/logging"
	uploadtypes "github.com/Yulian302/lfusys-wetransfer/uploads/types"
	"github.com/spf13/cobra"
)

type setupFunc func(ctx context.Context) (*App, error)

// CLI owns the command tree and the App built for the running command.
type CLI struct {
	Root *cobra.Command
	app  *App
}

// NewCLI builds the command tree. setup runs once before any subcommand.
func NewCLI(setup setupFunc) *CLI {
	c := &CLI{}

	c.Root = &cobra.Command{
		Use:          "wetransfer",
		Short:        "Create WeTransfer transfers and boards from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			c.app = app
			cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))
			return nil
		},
	}
	c.Root.PersistentFlags().Bool("progress", false, "print upload progress to stderr")

	session := func(cmd *cobra.Command) (*client.Client, error) {
		return c.app.Client(cmd.Context())
	}

	c.Root.AddCommand(newTransferCommand(session), newBoardCommand(session))
	return c
}

func (c *CLI) Execute(ctx context.Context) error {
	return c.Root.ExecuteContext(ctx)
}

// Shutdown releases whatever the last setup created. It runs whether or not
// the command failed.
func (c *CLI) Shutdown(ctx context.Context) {
	if c.app != nil {
		c.app.Shutdown(ctx)
	}
}

type sessionFunc func(cmd *cobra.Command) (*client.Client, error)

func newTransferCommand(session sessionFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Manage transfers",
	}

	var message string
	var paths []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Upload files as a new transfer and print it once finalized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session(cmd)
			if err != nil {
				return err
			}
			svc := c.Transfers
			if progressEnabled(cmd) {
				svc = svc.WithProgress(progressPrinter(cmd.ErrOrStderr()))
			}
			transfer, err := svc.Create(cmd.Context(), message, paths)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), transfer)
		},
	}
	create.Flags().StringVarP(&message, "message", "m", "", "message shown to recipients")
	create.Flags().StringSliceVarP(&paths, "file", "f", nil, "file to upload (repeatable)")
	_ = create.MarkFlagRequired("message")
	_ = create.MarkFlagRequired("file")

	find := &cobra.Command{
		Use:   "find ID",
		Short: "Print a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session(cmd)
			if err != nil {
				return err
			}
			transfer, err := c.Transfers.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), transfer)
		},
	}

	cmd.AddCommand(create, find)
	return cmd
}

func newBoardCommand(session sessionFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session(cmd)
			if err != nil {
				return err
			}
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			board, err := c.Boards.Create(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), board)
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "board description")

	find := &cobra.Command{
		Use:   "find ID",
		Short: "Print a board with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session(cmd)
			if err != nil {
				return err
			}
			board, err := c.Boards.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), board)
		},
	}

	var paths []string
	addFiles := &cobra.Command{
		Use:   "add-files ID",
		Short: "Upload files to a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := session(cmd)
			if err != nil {
				return err
			}
			svc := c.Boards
			if progressEnabled(cmd) {
				svc = svc.WithProgress(progressPrinter(cmd.ErrOrStderr()))
			}
			res, err := svc.AddFiles(cmd.Context(), args[0], paths)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	addFiles.Flags().StringSliceVarP(&paths, "file", "f", nil, "file to upload (repeatable)")
	_ = addFiles.MarkFlagRequired("file")

	var rawLinks []string
	addLinks := &cobra.Command{
		Use:   "add-links ID",
		Short: "Add links to a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := parseLinks(rawLinks)
			if err != nil {
				return err
			}
			c, err := session(cmd)
			if err != nil {
				return err
			}
			added, err := c.Boards.AddLinks(cmd.Context(), args[0], links)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), added)
		},
	}
	addLinks.Flags().StringArrayVarP(&rawLinks, "link", "l", nil, "link as URL=TITLE (repeatable)")
	_ = addLinks.MarkFlagRequired("link")

	cmd.AddCommand(create, find, addFiles, addLinks)
	return cmd
}

// parseLinks splits URL=TITLE pairs on the last '='; query strings may
// contain '=' themselves.
func parseLinks(raw []string) ([]boardtypes.AddLink, error) {
	links := make([]boardtypes.AddLink, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, "=")
		if i <= 0 || i == len(r)-1 {
			return nil, fmt.Errorf("invalid link %q, expected URL=TITLE", r)
		}
		links = append(links, boardtypes.AddLink{URL: r[:i], Title: r[i+1:]})
	}
	return links, nil
}

func progressEnabled(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("progress")
	return on
}

func progressPrinter(w io.Writer) uploadtypes.ProgressFunc {
	return func(e uploadtypes.ProgressEvent) {
		fmt.Fprintf(w, "%s: part %d/%d (%d/%d bytes)\n", e.Name, e.Part, e.Parts, e.BytesSent, e.BytesTotal)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
