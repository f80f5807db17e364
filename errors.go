package funds

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/twitchtv/twirp"
)

var (
	ErrFundInactive             = errors.New("fund is not active")
	ErrInsufficientContribution = errors.New("contribution amount is below minimum")
	ErrFundFull                 = errors.New("fund has reached maximum members")
	ErrNotAMember               = errors.New("user is not a member of this fund")
	ErrVotingEnded              = errors.New("voting period has ended")
	ErrVotingStillActive        = errors.New("voting is still active")
	ErrProposalAlreadyExecuted  = errors.New("proposal has already been executed")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientFunds        = errors.New("insufficient funds for transfer")

	ErrFundExists      = errors.New("fund already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("signer is not authorized")
	ErrOverflow        = errors.New("arithmetic overflow")
	ErrConflict        = errors.New("transaction conflict, retry")
)

var twirpCodes = []struct {
	err  error
	code twirp.ErrorCode
}{
	{ErrFundInactive, twirp.FailedPrecondition},
	{ErrInsufficientContribution, twirp.InvalidArgument},
	{ErrFundFull, twirp.ResourceExhausted},
	{ErrNotAMember, twirp.PermissionDenied},
	{ErrVotingEnded, twirp.FailedPrecondition},
	{ErrVotingStillActive, twirp.FailedPrecondition},
	{ErrProposalAlreadyExecuted, twirp.FailedPrecondition},
	{ErrInsufficientBalance, twirp.FailedPrecondition},
	{ErrInsufficientFunds, twirp.FailedPrecondition},
	{ErrFundExists, twirp.AlreadyExists},
	{ErrNotFound, twirp.NotFound},
	{ErrInvalidArgument, twirp.InvalidArgument},
	{ErrUnauthorized, twirp.PermissionDenied},
	{ErrOverflow, twirp.OutOfRange},
	{ErrConflict, twirp.Aborted},
}

// twirpError converts a domain error into the twirp error rendered to clients.
func twirpError(err error) twirp.Error {
	var te twirp.Error
	if errors.As(err, &te) {
		return te
	}

	for _, c := range twirpCodes {
		if errors.Is(err, c.err) {
			return twirp.NewError(c.code, err.Error())
		}
	}

	return twirp.InternalErrorWith(err)
}

func translateTxnError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}

	return err
}

func notFound(kind string, addr fmt.Stringer) error {
	return fmt.Errorf("%s %s: %w", kind, addr, ErrNotFound)
}
