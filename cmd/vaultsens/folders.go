package main

import (
	"github.com/spf13/cobra"
)

func (a *app) foldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage folders",
	}

	var parentID string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.CreateFolder(cmd.Context(), args[0], parentID)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	create.Flags().StringVar(&parentID, "parent", "", "parent folder ID")

	cmd.AddCommand(
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List folders",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				res, err := a.api.ListFolders(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(res)
			},
		},
		create,
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a folder",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.api.RenameFolder(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return a.printJSON(res)
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a folder",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.api.DeleteFolder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printJSON(res)
			},
		},
	)
	return cmd
}

func (a *app) metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show account usage metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.api.GetMetrics(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
}
