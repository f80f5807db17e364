package funds

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/zyedidia/generic/mapset"
)

type Server struct {
	engine  *Engine
	cfg     *Config
	history EventHistory

	mu     sync.Mutex
	closed mapset.Set[solana.PublicKey]
}

func NewServer(engine *Engine, cfg *Config) *Server {
	return &Server{
		engine: engine,
		cfg:    cfg,
		closed: mapset.New[solana.PublicKey](),
	}
}

// WithHistory serves name-filtered event queries from h.
func (s *Server) WithHistory(h EventHistory) *Server {
	s.history = h
	return s
}
