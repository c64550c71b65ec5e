// Command syncctl runs storefront synchronization by hand and inspects
// recorded sync runs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	"github.com/erp/stocksync/internal/bootstrap"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/infrastructure/auth"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/erp/stocksync/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globals struct {
	configFile string
	logLevel   string
	asJSON     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "syncctl",
		Short:        "Manual storefront sync and run history",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default: config.toml lookup and ERP_ env vars)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&g.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		pullCmd(g),
		pushCmd(g),
		runsCmd(g),
		runCmd(g),
		stockCmd(g),
		tokenCmd(g),
	)
	return root
}

func pullCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Copy pending storefront orders into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withServices(cmd.Context(), func(ctx context.Context, s *bootstrap.Services) error {
				result, err := s.Pull.Pull(ctx)
				if result != nil {
					if printErr := g.print(cmd.OutOrStdout(), result, func(w io.Writer) { renderPullResult(w, result) }); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}
}

func pushCmd(g *globals) *cobra.Command {
	var (
		doc        string
		ref        string
		articles   []string
		date       string
		updateDate bool
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push current stock of articles to the storefront",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildPushRequest(doc, ref, articles, date, updateDate)
			if err != nil {
				return err
			}
			return g.withServices(cmd.Context(), func(ctx context.Context, s *bootstrap.Services) error {
				result, err := s.Push.PushStockAndStatus(ctx, req)
				if result != nil {
					if printErr := g.print(cmd.OutOrStdout(), result, func(w io.Writer) { renderPushResult(w, result) }); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&doc, "doc", "", "document number recorded on the run")
	cmd.Flags().StringVar(&ref, "ref", "", "storefront order to mark completed first")
	cmd.Flags().StringArrayVar(&articles, "article", nil, "article id (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "document date sent with --update-date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&updateDate, "update-date", false, "send the document date to the storefront")
	_ = cmd.MarkFlagRequired("article")
	return cmd
}

// buildPushRequest validates push flags before any connection is opened
func buildPushRequest(doc, ref string, articles []string, date string, updateDate bool) (appintegration.PushRequest, error) {
	req := appintegration.PushRequest{
		DocumentNumber:   strings.TrimSpace(doc),
		UpdateRemoteDate: updateDate,
	}
	for _, a := range articles {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.Articles = append(req.Articles, id)
			}
		}
	}
	if len(req.Articles) == 0 {
		return req, fmt.Errorf("at least one --article is required")
	}
	if strings.TrimSpace(ref) != "" {
		normalized, err := ledger.NormalizeRemoteRef(ref)
		if err != nil {
			return req, err
		}
		req.RemoteOrderRef = normalized.Ptr()
	}
	if date != "" {
		parsed, err := parseDate(date)
		if err != nil {
			return req, err
		}
		req.DocumentDate = &parsed
	} else if updateDate {
		now := time.Now()
		req.DocumentDate = &now
	}
	return req, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: use RFC 3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}

func runsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 || limit > 200 {
				return fmt.Errorf("--limit must be between 1 and 200")
			}
			return g.withServices(cmd.Context(), func(ctx context.Context, s *bootstrap.Services) error {
				runs, err := s.Runs.ListRecent(ctx, limit)
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), runs, func(w io.Writer) { renderRuns(w, runs) })
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func runCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "run ID",
		Short: "Show one sync run with its batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("run id must be a UUID: %w", err)
			}
			return g.withServices(cmd.Context(), func(ctx context.Context, s *bootstrap.Services) error {
				run, err := s.Runs.FindByID(ctx, id)
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), run, func(w io.Writer) { renderRun(w, run) })
			})
		},
	}
}

func stockCmd(g *globals) *cobra.Command {
	var articles []string
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Print current ledger stock of articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withServices(cmd.Context(), func(ctx context.Context, s *bootstrap.Services) error {
				levels, err := s.Ledger.CurrentStock(ctx, articles)
				if err != nil {
					return err
				}
				return g.print(cmd.OutOrStdout(), levels, func(w io.Writer) { renderStock(w, articles, levels) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&articles, "article", nil, "article ids (repeatable or comma separated)")
	_ = cmd.MarkFlagRequired("article")
	return cmd
}

func tokenCmd(g *globals) *cobra.Command {
	var (
		subject string
		roles   []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			svc, err := auth.NewJWTService(cfg.JWT)
			if err != nil {
				return err
			}
			token, expires, err := svc.Issue(subject, roles, ttl)
			if err != nil {
				return err
			}
			if g.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"token": token, "expires_at": expires})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "who the token identifies")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleOperator}, "granted roles")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// --- helpers ---

func (g *globals) loadConfig() (*config.Config, error) {
	if g.configFile != "" {
		return config.LoadFile(g.configFile)
	}
	return config.Load()
}

func (g *globals) withServices(ctx context.Context, fn func(context.Context, *bootstrap.Services) error) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(&logger.Config{Level: g.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	services, err := bootstrap.Build(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Warn("Error closing connections", zap.Error(err))
		}
	}()
	return fn(ctx, services)
}

func (g *globals) print(w io.Writer, v any, table func(io.Writer)) error {
	if g.asJSON {
		return writeJSON(w, v)
	}
	table(w)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
