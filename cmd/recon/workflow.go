package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vrtravel/reconcli/internal/workflow"
)

func newStartCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "start [image-path]...",
		Short: "Run the full create → upload → reconstruct workflow",
		Long:  "Creates a scene, uploads the given images (or the staged files if none are given), starts the reconstruction, and polls until it finishes. Ctrl+C cancels the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, configPath, name, description, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&name, "name", "", "scene name (required)")
	cmd.Flags().StringVar(&description, "description", "", "scene description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runStart(cmd *cobra.Command, configPath, name, description string, paths []string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	stop := cancelOnInterrupt(a.engine, out)
	defer stop()

	scene, err := a.engine.StartFullWorkflow(cmd.Context(), name, description, paths)
	if err != nil {
		if errors.Is(err, workflow.ErrCancelled) {
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "Scene %s completed\n", scene.ID)
	if scene.PlyFilePath != "" {
		fmt.Fprintf(out, "Model: %s\n", scene.PlyFilePath)
	}
	return nil
}

func newUploadCmd() *cobra.Command {
	var (
		configPath string
		sceneID    string
	)

	cmd := &cobra.Command{
		Use:   "upload [image-path]...",
		Short: "Upload images to an existing scene",
		Long:  "Uploads the given images (or the staged files if none are given) to a scene without starting a reconstruction.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, configPath, sceneID, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&sceneID, "scene", "", "target scene ID (defaults to the current scene)")
	return cmd
}

func runUpload(cmd *cobra.Command, configPath, sceneID string, paths []string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	if sceneID == "" {
		current, err := a.store.CurrentScene()
		if err != nil {
			return fmt.Errorf("no scene selected (use --scene or 'recon scene use')")
		}
		sceneID = current.ID
	}

	scene, err := a.engine.UploadImages(cmd.Context(), sceneID, paths)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Uploaded to %s (%d images)\n", scene.ID, scene.ImageCount)
	return nil
}

// cancelOnInterrupt forwards the first SIGINT to the engine as a
// cooperative cancel. A second SIGINT restores default handling, so a
// stuck run can still be killed.
func cancelOnInterrupt(engine *workflow.Engine, out io.Writer) (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})

	go func() {
		select {
		case <-ch:
			fmt.Fprintln(out, "\nCancelling... (Ctrl+C again to force quit)")
			engine.Cancel()
			signal.Stop(ch)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
