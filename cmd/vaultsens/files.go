package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vaultsens/vaultsens-go/client"
)

func (a *app) filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage stored files",
	}
	cmd.AddCommand(
		a.filesListCmd(),
		a.filesInfoCmd(),
		a.filesUpdateCmd(),
		a.filesRemoveCmd(),
		a.filesURLCmd(),
	)
	return cmd
}

func (a *app) filesListCmd() *cobra.Command {
	var folderID string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List files, optionally in one folder",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.api.ListFiles(cmd.Context(), folderID)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "only list files in this folder")
	return cmd
}

func (a *app) filesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show a file's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.GetFileMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if size, ok := res["size"].(float64); ok && size >= 0 {
				a.logger.Info().Str("file", args[0]).Str("size", humanize.Bytes(uint64(size))).Msg("metadata")
			}
			return a.printJSON(res)
		},
	}
}

func (a *app) filesUpdateCmd() *cobra.Command {
	var opts client.UploadOptions
	cmd := &cobra.Command{
		Use:   "update <id> <file>",
		Short: "Replace a file's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logUploadSizes(args[1:])
			res, err := a.api.UpdateFile(cmd.Context(), args[0], args[1], &opts)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	addUploadFlags(cmd, &opts, false)
	return cmd
}

// deleteOutcome is the JSON shape printed per ID by "files rm".
type deleteOutcome struct {
	FileID string         `json:"fileId"`
	Result client.Result  `json:"result,omitempty"`
	Error  *deleteFailure `json:"error,omitempty"`
}

type deleteFailure struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (a *app) filesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete one or more files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				res, err := a.api.DeleteFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(res)
			}

			results, err := a.api.DeleteFiles(cmd.Context(), args)
			if results == nil {
				return err // credentials missing, nothing was sent
			}
			out := make([]deleteOutcome, 0, len(results))
			for _, r := range results {
				o := deleteOutcome{FileID: r.FileID, Result: r.Result}
				if r.Err != nil {
					o.Error = &deleteFailure{Message: r.Err.Error()}
					if ae := asAPIError(r.Err); ae != nil {
						o.Error.Kind = ae.Kind.String()
						o.Error.Status = ae.Status
					}
				}
				out = append(out, o)
			}
			if perr := a.printJSON(out); perr != nil {
				return perr
			}
			if err != nil {
				// Per-ID details are in the output; keep the exit error short.
				return fmt.Errorf("%s", strings.TrimSpace(err.Error()))
			}
			return nil
		},
	}
}

func (a *app) filesURLCmd() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "url <id>",
		Short: "Print a file's public URL",
		Long: `Print the URL of a file without contacting the server. Extra query
parameters (e.g. image transforms) are given as --param key=value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseParams(params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, a.api.BuildFileURL(args[0], q))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func parseParams(params []string) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}
	q := make(url.Values, len(params))
	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		q.Add(k, v)
	}
	return q, nil
}
