package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ai-tutor/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP question-answering server",
	Long:  `Starts the tutor HTTP server with the search API, the active namespace endpoint and the chat websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllCORS,
		}, a.service, a.namespaces)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go a.limiter.Run(ctx, a.cfg.RateLimit.SweepInterval)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "tutor server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", a.cfg.Provider, a.cfg.Model)
		fmt.Fprintf(os.Stderr, "  Vector store: %s\n", a.cfg.VectorStore.Type)
		if ns, ok := a.namespaces.Active(); ok {
			fmt.Fprintf(os.Stderr, "  Active namespace: %s\n", ns)
		}
		if err := a.cfg.CheckCredentials(); err != nil {
			fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 3000, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
