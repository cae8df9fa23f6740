package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"flatplan/internal/api"
	"flatplan/internal/models"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Manage floor-plan layouts",
}

var (
	layoutsFlat   int64
	layoutNewName string
)

func init() {
	rootCmd.AddCommand(layoutsCmd)

	layoutsListCmd.Flags().Int64Var(&layoutsFlat, "flat", 0, "Filter by owning flat id")
	layoutsCreateCmd.Flags().Int64Var(&layoutsFlat, "flat", 0, "Owning flat id (0 = unattached)")
	layoutsRenameCmd.Flags().StringVar(&layoutNewName, "name", "", "New layout name (required)")
	_ = layoutsRenameCmd.MarkFlagRequired("name")

	layoutsCmd.AddCommand(layoutsListCmd)
	layoutsCmd.AddCommand(layoutsShowCmd)
	layoutsCmd.AddCommand(layoutsCreateCmd)
	layoutsCmd.AddCommand(layoutsRenameCmd)
	layoutsCmd.AddCommand(layoutsDeleteCmd)
	layoutsCmd.AddCommand(layoutsSetScaleCmd)
	layoutsCmd.AddCommand(layoutsSaveDataCmd)
}

var layoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := api.LayoutFilter{}
		if layoutsFlat > 0 {
			filter.Flat = &layoutsFlat
		}

		if err := apiClient.LayoutStore.FetchLayouts(cmd.Context(), filter); err != nil {
			return err
		}

		layouts := apiClient.LayoutStore.Layouts()
		if jsonOutput {
			printJSON(layouts)
			return nil
		}

		if len(layouts) == 0 {
			printInfo("No layouts found")
			return nil
		}
		for _, layout := range layouts {
			line := fmt.Sprintf("%4d  %s", layout.ID, layout.Name)
			if layout.Flat != nil {
				line += fmt.Sprintf("  (flat %d)", *layout.Flat)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var layoutsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := apiClient.LayoutStore.FetchLayout(cmd.Context(), id); err != nil {
			return err
		}

		layout := apiClient.LayoutStore.CurrentLayout()
		if jsonOutput {
			printJSON(layout)
			return nil
		}

		fmt.Printf("Layout %d: %s\n", layout.ID, layout.Name)
		if layout.Flat != nil {
			fmt.Printf("  Flat: %d\n", *layout.Flat)
		}
		if layout.ScaleCmPerPx != nil {
			fmt.Printf("  Scale: %.3f cm/px\n", *layout.ScaleCmPerPx)
		}
		fmt.Printf("  Geometry: %s (%d walls, %d points)\n",
			layout.LayoutData.Kind,
			len(layout.LayoutData.Walls),
			len(layout.LayoutData.Points))
		return nil
	},
}

var layoutsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a layout with an empty geometry document",
	RunE: func(cmd *cobra.Command, args []string) error {
		var flatID *int64
		if layoutsFlat > 0 {
			flatID = &layoutsFlat
		}

		layout, err := apiClient.LayoutStore.CreateLayout(cmd.Context(), flatID, nil)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(layout)
		} else {
			printSuccess("Created layout %d", layout.ID)
		}
		return nil
	},
}

var layoutsRenameCmd = &cobra.Command{
	Use:   "rename <id>",
	Short: "Rename a layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		layout, err := apiClient.LayoutStore.UpdateLayoutName(cmd.Context(), id, layoutNewName)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(layout)
		} else {
			printSuccess("Renamed layout %d to %s", layout.ID, layout.Name)
		}
		return nil
	},
}

var layoutsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := apiClient.LayoutStore.DeleteLayout(cmd.Context(), id); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]interface{}{"success": true, "id": id})
		} else {
			printSuccess("Deleted layout %d", id)
		}
		return nil
	},
}

var layoutsSetScaleCmd = &cobra.Command{
	Use:     "set-scale <id> <cm-per-px>",
	Short:   "Calibrate a layout's pixel-to-centimeter scale",
	Example: `  flatplan layouts set-scale 5 0.25`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		scale, err := strconv.ParseFloat(args[1], 64)
		if err != nil || scale <= 0 {
			return fmt.Errorf("invalid scale %q", args[1])
		}

		layout, err := apiClient.LayoutStore.SetScale(cmd.Context(), id, scale)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(layout)
		} else {
			printSuccess("Set scale of layout %d to %.3f cm/px", layout.ID, scale)
		}
		return nil
	},
}

var layoutsSaveDataCmd = &cobra.Command{
	Use:   "save-data <id> <file>",
	Short: "Replace a layout's geometry document from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read geometry file: %w", err)
		}

		var data models.LayoutData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse geometry file: %w", err)
		}

		if err := apiClient.LayoutStore.FetchLayout(cmd.Context(), id); err != nil {
			return err
		}
		if err := apiClient.LayoutStore.SaveLayout(cmd.Context(), data); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(apiClient.LayoutStore.CurrentLayout())
		} else {
			printSuccess("Saved geometry for layout %d", id)
		}
		return nil
	},
}
