package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/txengine/internal/adapter/http/dto"
	"github.com/iho/txengine/internal/infrastructure/retry"
)

// statusError is an unexpected HTTP status from the server.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, strings.TrimSpace(e.body))
}

// isTransient reports whether a consistency request is worth retrying:
// connection failures and 5xx answers from a server that is still starting.
func isTransient(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Op != "parse"
	}
	var statusErr *statusError
	return errors.As(err, &statusErr) && statusErr.code >= http.StatusInternalServerError
}

func newConsistencyCmd(stdout io.Writer, log zerolog.Logger) *cobra.Command {
	var (
		baseURL    string
		timeout    time.Duration
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check a running server's ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			client := &http.Client{Timeout: timeout}
			retrier := retry.NewRetrier(log, isTransient).WithMaxRetries(maxRetries)

			return checkConsistency(cmd.Context(), client, retrier, baseURL, stdout)
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the txengine server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	cmd.Flags().IntVar(&maxRetries, "retries", 5, "Retries on connection errors and 5xx responses")

	return cmd
}

func checkConsistency(ctx context.Context, client *http.Client, retrier *retry.Retrier, baseURL string, stdout io.Writer) error {
	var result dto.ReconciliationResponse

	err := retrier.Retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/v1/ledger/consistency", nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
			return &statusError{code: resp.StatusCode, body: string(body)}
		}

		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !result.Consistent {
		fmt.Fprintf(stdout, "Consistency check FAILED\n")
		for _, d := range result.Discrepancies {
			fmt.Fprintf(stdout, "client %d: total %s, available+held %s\n", d.Client, d.RecordedTotal, d.CalculatedTotal)
		}
		return errInconsistent
	}

	fmt.Fprintf(stdout, "Consistency check PASSED\n")
	fmt.Fprintf(stdout, "Accounts: %d (locked: %d)\n", result.TotalAccounts, result.LockedAccounts)
	fmt.Fprintf(stdout, "Total: %s\n", result.Total)
	return nil
}
