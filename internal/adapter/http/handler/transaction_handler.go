package handler

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/txengine/internal/adapter/csvio"
	"github.com/iho/txengine/internal/adapter/http/dto"
	"github.com/iho/txengine/internal/domain"
	"github.com/iho/txengine/internal/infrastructure/pipeline"
)

// Submitter queues transactions for the ledger.
type Submitter interface {
	Submit(ctx context.Context, tx domain.Transaction) error
	Feed(ctx context.Context, src pipeline.Source) (pipeline.FeedStats, error)
}

// IDGenerator generates batch ids.
type IDGenerator interface {
	Generate() string
}

// TransactionHandler accepts transactions over HTTP.
type TransactionHandler struct {
	submitter Submitter
	ids       IDGenerator
	logger    zerolog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(submitter Submitter, ids IDGenerator, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{submitter: submitter, ids: ids, logger: logger}
}

// Create queues the transactions in the request body. A text/csv body is
// read like an input file: header first, bad rows skipped. Any other body
// must be one JSON transaction. Transactions are applied asynchronously.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	batchID := h.ids.Generate()
	annotate(r, map[string]any{"batch_id": batchID})

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		stats, err := h.submitter.Feed(r.Context(), csvio.NewReader(body))
		if err != nil {
			h.logger.Warn().
				Str("batch_id", batchID).
				Int("accepted", stats.Submitted).
				Err(err).
				Msg("csv batch aborted")
			writeDomainError(w, "failed to submit transactions", err)
			return
		}

		annotate(r, map[string]any{
			"read":     stats.Read,
			"accepted": stats.Submitted,
			"skipped":  stats.Skipped,
		})

		writeJSON(w, http.StatusAccepted, dto.SubmitResponse{
			BatchID:  batchID,
			Read:     stats.Read,
			Accepted: stats.Submitted,
			Skipped:  stats.Skipped,
		})
		return
	}

	var req dto.TransactionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}
	annotate(r, map[string]any{
		"client": uint16(tx.ClientID),
		"tx":     uint32(tx.TxID),
		"type":   string(tx.Type),
	})

	if err := h.submitter.Submit(r.Context(), tx); err != nil {
		writeDomainError(w, "failed to submit transaction", err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.SubmitResponse{
		BatchID:  batchID,
		Read:     1,
		Accepted: 1,
	})
}
