package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vrtravel/reconcli/internal/store"
)

func newSceneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Scene management commands",
	}

	cmd.AddCommand(newSceneListCmd())
	cmd.AddCommand(newSceneShowCmd())
	cmd.AddCommand(newSceneCreateCmd())
	cmd.AddCommand(newSceneUseCmd())
	cmd.AddCommand(newSceneCheckCmd())
	cmd.AddCommand(newSceneRMImageCmd())
	return cmd
}

func newSceneListCmd() *cobra.Command {
	var (
		configPath string
		cached     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scenes",
		Long:  "Fetches the scene list from the server and refreshes the local cache. Use --cached to skip the server round-trip.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneList(cmd, configPath, cached)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().BoolVar(&cached, "cached", false, "list the local cache without contacting the server")
	return cmd
}

func runSceneList(cmd *cobra.Command, configPath string, cached bool) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	if !cached {
		if _, err := a.engine.FetchScenes(cmd.Context()); err != nil {
			return err
		}
	}

	scenes, err := a.store.Scenes()
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		fmt.Fprintln(out, "No scenes")
		return nil
	}

	current, _ := a.store.CurrentScene()
	writeSceneTable(out, scenes, current)
	return nil
}

func newSceneShowCmd() *cobra.Command {
	var (
		configPath string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "show <scene-id>",
		Short: "Show one scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneShow(cmd, configPath, args[0], refresh)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the latest state from the server first")
	return cmd
}

func runSceneShow(cmd *cobra.Command, configPath, sceneID string, refresh bool) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	if refresh {
		if _, err := a.engine.FetchSceneByID(cmd.Context(), sceneID); err != nil {
			return err
		}
	}

	scene, err := a.store.Scene(sceneID)
	if err != nil {
		if errors.Is(err, store.ErrSceneNotFound) {
			return fmt.Errorf("scene %s not found (try 'recon scene list')", sceneID)
		}
		return err
	}
	writeSceneDetail(out, scene)
	return nil
}

func newSceneCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new scene",
		Long:  "Creates an empty scene on the server and selects it as current. The server assigns the scene ID.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneCreate(cmd, configPath, name, description)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&name, "name", "", "scene name (required)")
	cmd.Flags().StringVar(&description, "description", "", "scene description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runSceneCreate(cmd *cobra.Command, configPath, name, description string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	scene, err := a.engine.CreateScene(cmd.Context(), name, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created scene %s (%s)\n", scene.ID, scene.Name)
	return nil
}

func newSceneUseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "use <scene-id>",
		Short: "Select the current scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.SetCurrentScene(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Current scene: %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newSceneCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check <scene-id>",
		Short: "Check whether a scene is ready for reconstruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSceneCheck(cmd, configPath, args[0])
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runSceneCheck(cmd *cobra.Command, configPath, sceneID string) error {
	out := cmd.OutOrStdout()
	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	ready, err := a.client.CheckReadiness(cmd.Context(), sceneID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Scene:           %s (%s)\n", ready.SceneID, ready.Name)
	fmt.Fprintf(out, "Images:          %d (hasImages=%v)\n", ready.ImageCount, ready.HasImages)
	fmt.Fprintf(out, "Pose estimation: hasColmap=%v canRun=%v\n", ready.HasColmap, ready.CanRunColmap)
	fmt.Fprintf(out, "Reconstruction:  hasModel=%v canRun=%v\n", ready.HasModel, ready.CanRunReconstruction)
	if ready.NextStep != "" {
		fmt.Fprintf(out, "Next step:       %s\n", ready.NextStep)
	}
	return nil
}

func newSceneRMImageCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm-image <scene-id> <filename>",
		Short: "Delete an uploaded image from a scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			scene, err := a.engine.DeleteImage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s from %s (%d images remain)\n", args[1], scene.ID, scene.ImageCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
