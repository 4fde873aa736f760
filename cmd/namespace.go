package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ai-tutor/internal/config"
	"github.com/ziadkadry99/ai-tutor/internal/namespace"
)

var namespaceCmd = &cobra.Command{
	Use:   "namespace",
	Short: "Show the active namespace",
	Long:  `Prints the namespace written by the most recent indexing run. Queries are scoped to it; without one they search the whole index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := namespaceStore()
		if err != nil {
			return err
		}
		p, err := store.Read()
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No active namespace.")
			return nil
		}
		if err != nil {
			return err
		}
		printPointer(p)
		return nil
	},
}

var namespaceSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Point queries at a namespace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := namespaceStore()
		if err != nil {
			return err
		}
		p, err := store.Set(args[0])
		if err != nil {
			return err
		}
		printPointer(p)
		return nil
	},
}

var namespaceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the active namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := namespaceStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", store.Path())
		return nil
	},
}

func init() {
	namespaceCmd.AddCommand(namespaceSetCmd, namespaceClearCmd)
	rootCmd.AddCommand(namespaceCmd)
}

// namespaceStore opens the pointer file named by the config. Only the
// namespace file setting is needed, so the rest of the config is not validated.
func namespaceStore() (*namespace.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return namespace.NewStore(cfg.NamespaceFile), nil
}

func printPointer(p *namespace.Pointer) {
	fmt.Printf("Active namespace: %s\n", p.Namespace)
	if !p.LastUpdated.IsZero() {
		fmt.Printf("Last updated:     %s\n", p.LastUpdated.Local().Format(time.RFC1123))
	}
}
