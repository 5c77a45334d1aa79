package cmd

import (
	"fmt"

	"github.com/channelmesh/pathfinder/modules/pathfinding/constants"
	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pathfinder version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println(constants.Version)
		},
	}
}
