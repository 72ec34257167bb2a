package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Pending upload file commands",
		Long:  "Manages the local list of images staged for the next upload. Files are consumed and cleared when a workflow uploads them.",
	}

	cmd.AddCommand(newFilesAddCmd())
	cmd.AddCommand(newFilesListCmd())
	cmd.AddCommand(newFilesRemoveCmd())
	cmd.AddCommand(newFilesClearCmd())
	return cmd
}

func newFilesAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage image files for upload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			files, err := a.store.AddPendingFiles(args)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s  %s\n", f.ID, f.Path)
			}
			fmt.Fprintf(out, "Staged %d files\n", len(files))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newFilesListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List staged files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			files, err := a.store.PendingFiles()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(out, "No staged files")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s  %s\n", f.ID, f.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newFilesRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <file-id>",
		Short: "Unstage one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.RemovePendingFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newFilesClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Unstage all files",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.ClearPendingFiles(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Cleared staged files")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
