package funds

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gagliardetto/solana-go"
)

// check is a single precondition of an operation. Each operation lists all of
// its checks up front and runs them through checkAll before touching state.
type check func() error

func checkAll(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}

	return nil
}

func maxBytes(field, value string, limit int) check {
	return func() error {
		if !govalidator.ByteLength(value, "0", fmt.Sprint(limit)) {
			return fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidArgument, field, limit)
		}

		return nil
	}
}

func signerPresent(signer solana.PublicKey) check {
	return func() error {
		if signer.IsZero() {
			return fmt.Errorf("%w: missing signer", ErrUnauthorized)
		}

		return nil
	}
}

func signerIs(signer, authority solana.PublicKey) check {
	return func() error {
		if !signer.Equals(authority) {
			return fmt.Errorf("%w: %s is not %s", ErrUnauthorized, signer, authority)
		}

		return nil
	}
}

func fundActive(fund *Fund) check {
	return func() error {
		if !fund.IsActive {
			return ErrFundInactive
		}

		return nil
	}
}

func minContribution(fund *Fund, amount uint64) check {
	return func() error {
		if amount < fund.MinContribution {
			return fmt.Errorf("%w: %d < %d", ErrInsufficientContribution, amount, fund.MinContribution)
		}

		return nil
	}
}

// seatAvailable binds every deposit, top-ups included.
func seatAvailable(fund *Fund) check {
	return func() error {
		if fund.MemberCount >= fund.MaxMembers {
			return ErrFundFull
		}

		return nil
	}
}

func currentMember(member *Member) check {
	return func() error {
		if !member.IsCurrent() {
			return ErrNotAMember
		}

		return nil
	}
}

func votingOpen(proposal *Proposal, now time.Time) check {
	return func() error {
		if !now.Before(proposal.VotingEndsAt) {
			return ErrVotingEnded
		}

		return nil
	}
}

func votingClosed(proposal *Proposal, now time.Time) check {
	return func() error {
		if now.Before(proposal.VotingEndsAt) {
			return ErrVotingStillActive
		}

		return nil
	}
}

func notExecuted(proposal *Proposal) check {
	return func() error {
		if proposal.Executed {
			return ErrProposalAlreadyExecuted
		}

		return nil
	}
}

func withinContribution(member *Member, amount uint64) check {
	return func() error {
		if member == nil || amount > member.Contribution {
			return ErrInsufficientBalance
		}

		return nil
	}
}

func votingDuration(d, limit time.Duration) check {
	return func() error {
		if d < 0 {
			return fmt.Errorf("%w: negative voting duration", ErrInvalidArgument)
		}

		if limit > 0 && d > limit {
			return fmt.Errorf("%w: voting duration %s exceeds %s", ErrInvalidArgument, d, limit)
		}

		return nil
	}
}
