package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lu-zhengda/aliases/internal/domain"
	"github.com/lu-zhengda/aliases/internal/metrics"
	"github.com/lu-zhengda/aliases/internal/provider"
)

// LookupService resolves a username to its name history in two strictly
// sequential stages: account id, then history. Every failure is folded into
// the returned result; nothing is returned as an error or allowed to panic
// out.
type LookupService struct {
	provider provider.IdentityProvider
	log      log.FieldLogger
	metrics  *metrics.Metrics
}

// NewLookupService creates a LookupService backed by p. m may be nil.
func NewLookupService(p provider.IdentityProvider, logger log.FieldLogger, m *metrics.Metrics) *LookupService {
	return &LookupService{
		provider: p,
		log:      logger.WithField("component", "lookup"),
		metrics:  m,
	}
}

// Resolve runs both stages and classifies the result.
func (s *LookupService) Resolve(ctx context.Context, username string) (res domain.LookupResult) {
	res = domain.LookupResult{Username: username}
	defer func() { s.metrics.ObserveLookup(res.Outcome.String()) }()

	entry := s.log.WithField("username", username)

	id, err := s.identity(ctx, username)
	if err != nil {
		res.Err = err
		switch {
		case errors.Is(err, provider.ErrUnknownUsername):
			res.Outcome = domain.OutcomeInvalidUsername
			entry.Debug("no account for username")
		case provider.StatusCode(err) != 0:
			res.Outcome = domain.OutcomeProviderError
			res.StatusCode = provider.StatusCode(err)
			entry.WithField("status", res.StatusCode).Warn("identity service returned unexpected status")
		default:
			res.Outcome = domain.OutcomeIdentityFailure
			entry.WithError(err).WithField("stage", provider.StageIdentity).Error("failed to resolve account id")
		}
		return res
	}
	res.AccountID = id
	entry = entry.WithField("account_id", id)

	records, err := s.history(ctx, id)
	if err == nil {
		res.History, err = domain.NewHistory(records)
	}
	if err != nil {
		res.Outcome = domain.OutcomeHistoryFailure
		res.Err = err
		entry.WithError(err).WithField("stage", provider.StageHistory).Error("failed to resolve name history")
		return res
	}

	res.Outcome = domain.OutcomeReport
	entry.WithField("names", len(records)).Info("resolved name history")
	return res
}

// ResolveAsync starts Resolve on its own goroutine and hands the result to
// done once both stages have finished. It returns immediately.
func (s *LookupService) ResolveAsync(ctx context.Context, username string, done func(domain.LookupResult)) {
	go func() {
		res := s.Resolve(ctx, username)
		defer func() {
			if r := recover(); r != nil {
				s.log.WithField("username", username).Errorf("lookup callback panicked: %v", r)
			}
		}()
		done(res)
	}()
}

func (s *LookupService) identity(ctx context.Context, username string) (id domain.AccountID, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during identity lookup: %v", r)
		}
		s.metrics.ObserveStage(string(provider.StageIdentity), time.Since(start))
	}()
	return s.provider.AccountID(ctx, username)
}

func (s *LookupService) history(ctx context.Context, id domain.AccountID) (records []domain.NameRecord, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("panic during history lookup: %v", r)
		}
		s.metrics.ObserveStage(string(provider.StageHistory), time.Since(start))
	}()
	return s.provider.NameHistory(ctx, id)
}
