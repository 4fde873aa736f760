package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ai-tutor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tutor configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose providers and the vector index, and writes a .tutor.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
