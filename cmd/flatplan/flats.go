package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"flatplan/internal/api"
	"flatplan/internal/models"
)

var flatsCmd = &cobra.Command{
	Use:   "flats",
	Short: "Manage flat records",
}

var (
	flatsPage   int
	flatsSearch string
	flatsRooms  int

	flatName        string
	flatAddress     string
	flatAreaSqm     float64
	flatRooms       int
	flatDescription string
)

func init() {
	rootCmd.AddCommand(flatsCmd)

	flatsListCmd.Flags().IntVar(&flatsPage, "page", 0, "Result page")
	flatsListCmd.Flags().StringVar(&flatsSearch, "search", "", "Search term")
	flatsListCmd.Flags().IntVar(&flatsRooms, "rooms", 0, "Filter by room count")

	for _, cmd := range []*cobra.Command{flatsCreateCmd, flatsUpdateCmd} {
		cmd.Flags().StringVar(&flatName, "name", "", "Flat name (required)")
		cmd.Flags().StringVar(&flatAddress, "address", "", "Street address")
		cmd.Flags().Float64Var(&flatAreaSqm, "area", 0, "Area in square meters")
		cmd.Flags().IntVar(&flatRooms, "rooms", 0, "Room count")
		cmd.Flags().StringVar(&flatDescription, "description", "", "Free-form description")
		_ = cmd.MarkFlagRequired("name")
	}

	flatsCmd.AddCommand(flatsListCmd)
	flatsCmd.AddCommand(flatsShowCmd)
	flatsCmd.AddCommand(flatsCreateCmd)
	flatsCmd.AddCommand(flatsUpdateCmd)
	flatsCmd.AddCommand(flatsDeleteCmd)
	flatsCmd.AddCommand(flatsUploadCmd)
}

var flatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flats",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := api.FlatFilter{Page: flatsPage, Search: flatsSearch}
		if flatsRooms > 0 {
			filter.Rooms = &flatsRooms
		}

		if err := apiClient.FlatStore.FetchFlats(cmd.Context(), filter); err != nil {
			return err
		}

		flats := apiClient.FlatStore.Flats()
		if jsonOutput {
			printJSON(map[string]interface{}{
				"count": apiClient.FlatStore.Count(),
				"flats": flats,
			})
			return nil
		}

		if len(flats) == 0 {
			printInfo("No flats found")
			return nil
		}
		for _, flat := range flats {
			line := fmt.Sprintf("%4d  %s", flat.ID, flat.Name)
			if flat.Address != "" {
				line += "  (" + flat.Address + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var flatsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one flat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := apiClient.FlatStore.FetchFlat(cmd.Context(), id); err != nil {
			return err
		}

		flat := apiClient.FlatStore.CurrentFlat()
		if jsonOutput {
			printJSON(flat)
			return nil
		}

		fmt.Printf("Flat %d: %s\n", flat.ID, flat.Name)
		if flat.Address != "" {
			fmt.Printf("  Address: %s\n", flat.Address)
		}
		if flat.AreaSqm != nil {
			fmt.Printf("  Area: %.1f m²\n", *flat.AreaSqm)
		}
		if flat.Rooms != nil {
			fmt.Printf("  Rooms: %d\n", *flat.Rooms)
		}
		if flat.Layout != nil {
			fmt.Printf("  Layout: %d (%s)\n", flat.Layout.ID, flat.Layout.Name)
		}
		return nil
	},
}

var flatsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a flat",
	Example: `  flatplan flats create --name "Main St 12" --address "Main St 12" --rooms 3
  flatplan flats create --name Studio --area 41.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flat, err := apiClient.FlatStore.CreateFlat(cmd.Context(), flatPayload())
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(flat)
		} else {
			printSuccess("Created flat %d: %s", flat.ID, flat.Name)
		}
		return nil
	},
}

var flatsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a flat's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		flat, err := apiClient.FlatStore.UpdateFlat(cmd.Context(), id, flatPayload())
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(flat)
		} else {
			printSuccess("Updated flat %d", flat.ID)
		}
		return nil
	},
}

var flatsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a flat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := apiClient.FlatStore.DeleteFlat(cmd.Context(), id); err != nil {
			return err
		}

		if jsonOutput {
			printJSON(map[string]interface{}{"success": true, "id": id})
		} else {
			printSuccess("Deleted flat %d", id)
		}
		return nil
	},
}

var flatsUploadCmd = &cobra.Command{
	Use:   "upload-image <id> <file>",
	Short: "Upload a floor-plan image for a flat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		file, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer file.Close()

		layout, err := apiClient.FlatStore.UploadLayoutImage(
			cmd.Context(), id, filepath.Base(args[1]), file)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(layout)
		} else {
			printSuccess("Uploaded image, layout %d attached to flat %d", layout.ID, id)
		}
		return nil
	},
}

func flatPayload() models.FlatCreateUpdate {
	data := models.FlatCreateUpdate{
		Name:        flatName,
		Address:     flatAddress,
		Description: flatDescription,
	}
	if flatAreaSqm > 0 {
		data.AreaSqm = &flatAreaSqm
	}
	if flatRooms > 0 {
		data.Rooms = &flatRooms
	}
	return data
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
