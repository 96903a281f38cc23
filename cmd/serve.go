package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/debriefhq/debrief/internal/api"
	"github.com/debriefhq/debrief/internal/archive"
	"github.com/debriefhq/debrief/internal/daemon"
)

var (
	serveDaemon bool
	serveStop   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API for triggering and driving offboarding workflows.
By default it listens on port 8080 and runs in the foreground. Use
--daemon to detach into the background, and --stop to stop a running
background server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveStop {
			return serveStopRun()
		}
		if serveDaemon {
			return serveDaemonRun()
		}
		return serveRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().BoolVarP(&serveDaemon, "daemon", "d", false, "run in the background")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "stop a background server")
	viper.SetDefault("port", 8080)
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func pidFilePath() string {
	return filepath.Join(filepath.Dir(viper.GetString("db_path")), "debrief.pid")
}

func serveRun(ctx context.Context) error {
	orch, err := getOrchestrator()
	if err != nil {
		return err
	}

	// Archive reads are only available when the sink is the local one.
	var lister api.ArchiveLister
	if sq, ok := archiveSink.(*archive.SQLiteSink); ok {
		lister = sq
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", viper.GetInt("port")),
		Handler: api.NewServer(orch, lister).Router(),
	}

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		ui.Info("API listening on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	ui.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveDaemonRun re-executes the current binary detached from the terminal
// and records its PID.
func serveDaemonRun() error {
	pf := daemon.NewPIDFile(pidFilePath())
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	args := []string{"serve", "--port", fmt.Sprintf("%d", viper.GetInt("port"))}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	child := exec.Command(exe, args...)
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start background server: %w", err)
	}

	if err := pf.WritePID(child.Process.Pid); err != nil {
		return err
	}

	ui.Success("Server running in background (pid %d)", child.Process.Pid)
	return nil
}

func serveStopRun() error {
	pf := daemon.NewPIDFile(pidFilePath())
	pid, running := pf.IsRunning()
	if !running {
		_ = pf.Remove()
		return fmt.Errorf("no background server running")
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("stop server (pid %d): %w", pid, err)
	}

	_ = pf.Remove()
	ui.Success("Server stopped (pid %d)", pid)
	return nil
}
