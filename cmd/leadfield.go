package cmd

import (
	"fmt"

	"github.com/idossha/ti-opt-core/leadfield"
	"github.com/spf13/cobra"
)

var inspectPath string

var leadfieldCmd = &cobra.Command{
	Use:   "leadfield",
	Short: "Inspect a leadfield/atlas artifact",
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load a leadfield container and print its shape and electrode labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := leadfield.Load(inspectPath)
		if err != nil {
			return err
		}
		fmt.Println(lf.String())
		for _, e := range lf.Electrodes {
			fmt.Printf("  %-8s (%.2f, %.2f, %.2f)\n", e.Label, e.Position[0], e.Position[1], e.Position[2])
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPath, "path", "", "Path to the leadfield container (required)")
	inspectCmd.MarkFlagRequired("path")
	leadfieldCmd.AddCommand(inspectCmd)
}
