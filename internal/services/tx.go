package services

import (
	"context"
	"errors"
	"log"

	"github.com/farellandr/ticketbook/internal/apperror"
	"github.com/farellandr/ticketbook/internal/repository"
)

const defaultTxAttempts = 3

// runInTx runs fn in a transaction, retrying the whole transaction when the
// database aborts it because of a concurrent one. Business errors returned
// by fn are passed through untouched; any other failure becomes a
// persistence error.
func runInTx(ctx context.Context, txr repository.Transactor, attempts int, op string, fn func(tx repository.Tx) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = txr.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrTxConflict) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		log.Printf("%s: transaction conflict on attempt %d/%d: %v", op, attempt, attempts, err)
	}
	return apperror.From(err, "Could not complete "+op)
}
