package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vaultsens/vaultsens-go/client"
)

func (a *app) uploadCmd() *cobra.Command {
	var opts client.UploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more files",
		Long: `Upload local files. A single file is sent as "file"; several files go in
one request as "files".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logUploadSizes(args)

			var (
				res client.Result
				err error
			)
			if len(args) == 1 {
				res, err = a.api.UploadFile(cmd.Context(), args[0], &opts)
			} else {
				res, err = a.api.UploadFiles(cmd.Context(), args, &opts)
			}
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}

	addUploadFlags(cmd, &opts, true)
	return cmd
}

func addUploadFlags(cmd *cobra.Command, opts *client.UploadOptions, withFolder bool) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name for the stored file")
	cmd.Flags().StringVar(&opts.Compression, "compression", "", "server-side compression level")
	if withFolder {
		cmd.Flags().StringVar(&opts.FolderID, "folder", "", "destination folder ID")
	}
}

// logUploadSizes logs each file's size; unreadable paths are left for the
// client to report.
func (a *app) logUploadSizes(paths []string) {
	var total uint64
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		size := uint64(fi.Size())
		total += size
		a.logger.Debug().Str("file", p).Str("size", humanize.Bytes(size)).Msg("queued for upload")
	}
	a.logger.Info().
		Int("files", len(paths)).
		Str("total", humanize.Bytes(total)).
		Msg("uploading")
}
