package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for research requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := buildMux(ctx, env.Store, env.Pipeline)
		return startServer(ctx, mux, resolvePort(servePort, cfg.Server.Port))
	},
}

// buildMux assembles the HTTP routes. A nil pipeline accepts webhook requests
// without running research, which keeps handler tests independent of the API.
func buildMux(ctx context.Context, st store.Store, pipe *pipeline.Pipeline) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/research", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientName     string `json:"client_name"`
			SalesHistory   string `json:"sales_history"`
			PromptOverride string `json:"prompt_override"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if req.ClientName == "" {
			http.Error(w, `{"error":"client_name is required"}`, http.StatusBadRequest)
			return
		}

		var jobID string
		if st != nil {
			job, err := st.CreateJob(r.Context(), req.ClientName, req.SalesHistory, req.PromptOverride)
			if err != nil {
				zap.L().Error("webhook job create failed", zap.String("client", req.ClientName), zap.Error(err))
				http.Error(w, `{"error":"failed to create job"}`, http.StatusInternalServerError)
				return
			}
			jobID = job.ID
		}

		input := pipeline.JobInput{
			ClientName:     req.ClientName,
			SalesHistory:   req.SalesHistory,
			PromptOverride: req.PromptOverride,
			JobID:          jobID,
		}

		// Run research asynchronously against the server's lifetime context.
		go func() {
			if pipe == nil {
				return
			}
			state := pipe.Run(ctx, input)
			if state.Failed() {
				zap.L().Error("webhook research failed",
					zap.String("job_id", jobID),
					zap.String("client", req.ClientName),
					zap.String("error", state.Error),
				)
				return
			}
			zap.L().Info("webhook research complete",
				zap.String("job_id", jobID),
				zap.String("client", req.ClientName),
				zap.String("vertical", state.Vertical),
			)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "accepted",
			"job_id": jobID,
			"client": req.ClientName,
		})
	})

	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, `{"error":"store unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		job, err := st.GetJob(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job)
	})

	return mux
}

// resolvePort returns the flag value when set, otherwise the config value.
func resolvePort(flag, config int) int {
	if flag != 0 {
		return flag
	}
	return config
}

// startServer runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func startServer(ctx context.Context, mux *http.ServeMux, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
