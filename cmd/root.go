package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Answer questions about an indexed document",
	Long: `Tutor answers natural-language questions about a document that has
already been chunked, embedded and stored in a vector index. Every answer
starts with a SOURCE line saying whether it is grounded in the document,
generated without supporting context, or an error.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal; the environment may already be set.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".tutor.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
