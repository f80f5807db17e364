package funds

import (
	"encoding/json"
	"math"
	"math/big"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

var maxLamports = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// Amount is a lamport quantity given either as an integer or as a SOL
// decimal string. SOL wins when both are set.
type Amount struct {
	Lamports uint64 `json:"lamports"`
	SOL      string `json:"sol"`
}

func (a Amount) value(field string) (uint64, error) {
	if a.SOL == "" {
		return a.Lamports, nil
	}

	sol, err := decimal.NewFromString(a.SOL)
	if err != nil {
		return 0, twirp.InvalidArgumentError(field, "invalid decimal")
	}

	lamports := sol.Shift(9)
	if lamports.IsNegative() || !lamports.Equal(lamports.Truncate(0)) || lamports.GreaterThan(maxLamports) {
		return 0, twirp.InvalidArgumentError(field, "not a lamport amount")
	}

	return lamports.BigInt().Uint64(), nil
}

func bindJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return twirp.InvalidArgument.Error("invalid body: " + err.Error())
	}

	return nil
}

func requireSigner(r *http.Request) (solana.PublicKey, error) {
	signer, ok := SignerFrom(r.Context())
	if !ok {
		return solana.PublicKey{}, twirp.Unauthenticated.Error("auth required")
	}

	return signer, nil
}

func (s *Server) createFund(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		Strategy        string `json:"strategy"`
		GroupRef        string `json:"group_ref"`
		MinContribution Amount `json:"min_contribution"`
		MaxMembers      uint32 `json:"max_members"`
		ManagementFee   uint16 `json:"management_fee"`
		PerformanceFee  uint16 `json:"performance_fee"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	minContribution, err := body.MinContribution.value("min_contribution")
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := s.engine.CreateFund(r.Context(), CreateFundInput{
		Signer:          signer,
		Name:            body.Name,
		Description:     body.Description,
		Strategy:        body.Strategy,
		GroupRef:        body.GroupRef,
		MinContribution: minContribution,
		MaxMembers:      body.MaxMembers,
		ManagementFee:   body.ManagementFee,
		PerformanceFee:  body.PerformanceFee,
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, s.engine.fundView(fund))
}

func (s *Server) joinFund(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Amount       Amount `json:"amount"`
		GroupUserRef uint64 `json:"group_user_ref"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	amount, err := body.Amount.value("amount")
	if err != nil {
		renderErr(w, err)
		return
	}

	member, err := s.engine.JoinFund(r.Context(), JoinFundInput{
		Signer:       signer,
		Fund:         fund,
		Amount:       amount,
		GroupUserRef: body.GroupUserRef,
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, memberView(member))
}

func (s *Server) withdrawFunds(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Amount Amount `json:"amount"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	amount, err := body.Amount.value("amount")
	if err != nil {
		renderErr(w, err)
		return
	}

	member, err := s.engine.WithdrawFunds(r.Context(), WithdrawFundsInput{
		Signer: signer,
		Fund:   fund,
		Amount: amount,
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, memberView(member))
}

func (s *Server) collectSuccessFee(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Profit Amount `json:"profit_amount"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	profit, err := body.Profit.value("profit_amount")
	if err != nil {
		renderErr(w, err)
		return
	}

	fee, err := s.engine.CollectSuccessFee(r.Context(), CollectSuccessFeeInput{
		Signer:       signer,
		Fund:         fund,
		ProfitAmount: profit,
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, map[string]interface{}{
		"fund":          fund,
		"profit_amount": profit,
		"fee_amount":    fee,
		"fee_sol":       lamportsToSOL(fee),
	})
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Action         string `json:"action"`
		Amount         string `json:"amount"`
		Token          string `json:"token"`
		Reasoning      string `json:"reasoning"`
		VotingDuration int64  `json:"voting_duration"` // seconds
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	action, err := ParseTradeAction(body.Action)
	if err != nil {
		renderErr(w, err)
		return
	}

	if body.VotingDuration > math.MaxInt64/int64(seconds(1)) {
		renderErr(w, twirp.InvalidArgumentError("voting_duration", "too long"))
		return
	}

	proposal, err := s.engine.CreateTradeProposal(r.Context(), CreateTradeProposalInput{
		Signer:         signer,
		Fund:           fund,
		Action:         action,
		Amount:         body.Amount,
		Token:          body.Token,
		Reasoning:      body.Reasoning,
		VotingDuration: seconds(body.VotingDuration),
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, proposalView(proposal, s.engine.now()))
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	signer, err := requireSigner(r)
	if err != nil {
		renderErr(w, err)
		return
	}

	proposal, err := urlKey(r, "proposal")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Vote bool `json:"vote"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	vote, err := s.engine.VoteOnProposal(r.Context(), VoteInput{
		Signer:   signer,
		Proposal: proposal,
		Support:  body.Vote,
	})

	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, vote)
}

func (s *Server) executeProposal(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "proposal")
	if err != nil {
		renderErr(w, err)
		return
	}

	proposal, err := s.engine.ExecuteProposal(r.Context(), addr)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, proposalView(proposal, s.engine.now()))
}

func (s *Server) airdrop(w http.ResponseWriter, r *http.Request) {
	account, err := urlKey(r, "account")
	if err != nil {
		renderErr(w, err)
		return
	}

	var body struct {
		Amount Amount `json:"amount"`
	}

	if err := bindJSON(r, &body); err != nil {
		renderErr(w, err)
		return
	}

	amount, err := body.Amount.value("amount")
	if err != nil {
		renderErr(w, err)
		return
	}

	balance, err := s.engine.Airdrop(r.Context(), account, amount)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, balance)
}
