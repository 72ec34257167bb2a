package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vrtravel/reconcli/internal/workflow"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run [scene-id]",
		Short: "Run a reconstruction for an existing scene",
		Long:  "Checks readiness, triggers the reconstruction pipeline, and polls until the scene reaches a terminal status. Defaults to the current scene. Ctrl+C cancels the run.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneID := ""
			if len(args) == 1 {
				sceneID = args[0]
			}
			return runReconstruction(cmd, configPath, sceneID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runReconstruction(cmd *cobra.Command, configPath, sceneID string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	if sceneID == "" {
		current, err := a.store.CurrentScene()
		if err != nil {
			return fmt.Errorf("no scene selected (pass a scene ID or 'recon scene use')")
		}
		sceneID = current.ID
	}

	stop := cancelOnInterrupt(a.engine, out)
	defer stop()

	scene, err := a.engine.RunReconstruction(cmd.Context(), sceneID)
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
