package funds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"
	"github.com/zyedidia/generic/mapset"
)

// Run schedules the background jobs and blocks until ctx is done. Neither job
// mutates governance state: proposals still close lazily and settle only
// through ExecuteProposal.
func (s *Server) Run(ctx context.Context) error {
	c := cron.New()

	if _, err := c.AddFunc(s.cfg.Schedule.GCCron, s.runGC); err != nil {
		return fmt.Errorf("register gc job: %w", err)
	}

	if _, err := c.AddFunc(s.cfg.Schedule.SweepCron, s.sweepClosedProposals); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}

	c.Start()
	slog.Info("scheduler started", "gc", s.cfg.Schedule.GCCron, "sweep", s.cfg.Schedule.SweepCron)

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("scheduler stopped")

	return ctx.Err()
}

func (s *Server) runGC() {
	for {
		err := s.engine.db.RunValueLogGC(0.7)
		if err == nil {
			continue
		}

		if !errors.Is(err, badger.ErrNoRewrite) {
			slog.Debug("value log gc skipped", slog.Any("err", err))
		}

		return
	}
}

// sweepClosedProposals logs proposals whose voting window ended without an
// execution, once per proposal while it stays closed.
func (s *Server) sweepClosedProposals() {
	proposals, err := s.engine.listClosedProposals(s.engine.now())
	if err != nil {
		slog.Error("list closed proposals failed", slog.Any("err", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	closed := mapset.New[solana.PublicKey]()
	for _, p := range proposals {
		closed.Put(p.Address)

		if s.closed.Has(p.Address) {
			continue
		}

		slog.With(
			slog.String("fund", p.Fund.String()),
			slog.String("proposal", p.Address.String()),
		).Info("proposal awaiting execution",
			slog.Uint64("proposal_id", p.ProposalID),
			slog.Int("votes_for", int(p.VotesFor)),
			slog.Int("votes_against", int(p.VotesAgainst)),
			slog.Time("voting_ends_at", p.VotingEndsAt),
		)
	}

	s.closed = closed
}
