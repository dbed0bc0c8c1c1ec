// Package payment wraps the payment collaborator behind a two-call
// contract: hand the client a token, then capture a charge. Nothing else
// about the gateway leaks into the application.
package payment

import "context"

// Charge is the gateway's confirmation of a successful capture.
type Charge struct {
	TransactionID string
	Amount        float64
}

// Gateway is the narrow payment-authorization contract.
type Gateway interface {
	// ClientToken returns a token the client SDK needs to tokenise a
	// payment method.
	ClientToken(ctx context.Context) (string, error)

	// Sale captures amount against the client-supplied payment method
	// nonce. A declined or failed charge is an error; there is no partial
	// success.
	Sale(ctx context.Context, amount float64, nonce string) (*Charge, error)
}
