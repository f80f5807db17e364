package funds

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spf13/cast"
	"github.com/twitchtv/twirp"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

func (s *Server) Handler() http.Handler {
	m := chi.NewMux()
	m.Use(middleware.Recoverer)
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Heartbeat("/hc"))
	m.Use(cors.AllowAll().Handler)
	m.Use(handleAuth(s.cfg.Auth.Issuer, []byte(s.cfg.Auth.Secret)))

	m.Route("/funds", func(r chi.Router) {
		r.Post("/", s.createFund)
		r.Get("/", s.listFunds)

		r.Route("/{fund}", func(r chi.Router) {
			r.Get("/", s.findFund)
			r.Get("/vault", s.findVault)
			r.Post("/join", s.joinFund)
			r.Post("/withdraw", s.withdrawFunds)
			r.Post("/success-fee", s.collectSuccessFee)
			r.Get("/members", s.listMembers)
			r.Get("/members/{participant}", s.findMember)
			r.Post("/proposals", s.createProposal)
			r.Get("/proposals", s.listProposals)
		})
	})

	m.Route("/proposals/{proposal}", func(r chi.Router) {
		r.Get("/", s.findProposal)
		r.Post("/votes", s.vote)
		r.Get("/votes", s.listVotes)
		r.Get("/votes/{voter}", s.findVote)
		r.Post("/execute", s.executeProposal)
	})

	m.Get("/accounts/{account}", s.findBalance)
	m.Post("/accounts/{account}/airdrop", s.airdrop)
	m.Get("/events", s.listEvents)

	return m
}

func renderJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	_ = json.NewEncoder(w).Encode(v)
}

func renderErr(w http.ResponseWriter, err error) {
	te := twirpError(err)
	if te.Code() == twirp.Internal {
		slog.Error("request failed", slog.Any("err", err))
	}

	_ = twirp.WriteError(w, te)
}

func urlKey(r *http.Request, name string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(chi.URLParam(r, name))
	if err != nil {
		return solana.PublicKey{}, twirp.InvalidArgumentError(name, "invalid public key")
	}

	return key, nil
}

func queryLimit(r *http.Request) int {
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	return limit
}

func (s *Server) listFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.engine.ListFunds(queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	views := make([]*FundView, 0, len(funds))
	for _, fund := range funds {
		views = append(views, s.engine.fundView(fund))
	}

	renderJSON(w, views)
}

func (s *Server) findFund(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	fund, err := s.engine.FindFund(addr)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, s.engine.fundView(fund))
}

func (s *Server) findVault(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	vault, err := s.engine.FundVault(addr)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, vault)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	members, err := s.engine.ListMembers(addr, queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	views := make([]*MemberView, 0, len(members))
	for _, member := range members {
		views = append(views, memberView(member))
	}

	renderJSON(w, views)
}

func (s *Server) findMember(w http.ResponseWriter, r *http.Request) {
	fund, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	participant, err := urlKey(r, "participant")
	if err != nil {
		renderErr(w, err)
		return
	}

	member, found, err := s.engine.FindMember(fund, participant)
	if err != nil {
		renderErr(w, err)
		return
	}

	if !found {
		renderErr(w, notFound("member", participant))
		return
	}

	renderJSON(w, memberView(member))
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "fund")
	if err != nil {
		renderErr(w, err)
		return
	}

	proposals, err := s.engine.ListProposals(addr, queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	now := s.engine.now()
	views := make([]*ProposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, proposalView(p, now))
	}

	renderJSON(w, views)
}

func (s *Server) findProposal(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "proposal")
	if err != nil {
		renderErr(w, err)
		return
	}

	proposal, err := s.engine.FindProposal(addr)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, proposalView(proposal, s.engine.now()))
}

func (s *Server) listVotes(w http.ResponseWriter, r *http.Request) {
	addr, err := urlKey(r, "proposal")
	if err != nil {
		renderErr(w, err)
		return
	}

	votes, err := s.engine.ListVotes(addr, queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, votes)
}

func (s *Server) findVote(w http.ResponseWriter, r *http.Request) {
	proposal, err := urlKey(r, "proposal")
	if err != nil {
		renderErr(w, err)
		return
	}

	voter, err := urlKey(r, "voter")
	if err != nil {
		renderErr(w, err)
		return
	}

	vote, found, err := s.engine.FindVote(proposal, voter)
	if err != nil {
		renderErr(w, err)
		return
	}

	if !found {
		renderErr(w, notFound("vote", voter))
		return
	}

	renderJSON(w, vote)
}

func (s *Server) findBalance(w http.ResponseWriter, r *http.Request) {
	account, err := urlKey(r, "account")
	if err != nil {
		renderErr(w, err)
		return
	}

	balance, err := s.engine.Balance(account)
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, balance)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		s.listEventHistory(w, r, name)
		return
	}

	since := parseTime(r.URL.Query().Get("since"))

	events, err := s.engine.ListEvents(since, queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	renderJSON(w, events)
}

func (s *Server) listEventHistory(w http.ResponseWriter, r *http.Request, name string) {
	if s.history == nil {
		renderErr(w, twirp.FailedPrecondition.Error("event history is not configured"))
		return
	}

	events, err := s.history.ListEvents(r.Context(), name, queryLimit(r))
	if err != nil {
		renderErr(w, err)
		return
	}

	if events == nil {
		events = []*Event{}
	}

	renderJSON(w, events)
}
