package funds

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

type contextKey struct{}

var signerContextKey = contextKey{}

// WithSigner attaches the verified caller identity to ctx.
func WithSigner(ctx context.Context, signer solana.PublicKey) context.Context {
	return context.WithValue(ctx, signerContextKey, signer)
}

func SignerFrom(ctx context.Context) (solana.PublicKey, bool) {
	signer, ok := ctx.Value(signerContextKey).(solana.PublicKey)
	return signer, ok
}
