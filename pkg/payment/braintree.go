package payment

import (
	"context"
	"fmt"
	"math"

	braintree "github.com/braintree-go/braintree-go"

	"github.com/shashiranjanraj/kirana/config"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
)

// Braintree implements Gateway against the Braintree API.
type Braintree struct {
	bt *braintree.Braintree
}

// NewBraintree builds the gateway from the BRAINTREE_* config keys.
func NewBraintree() *Braintree {
	env := braintree.Sandbox
	if config.BraintreeEnv() == "production" {
		env = braintree.Production
	}
	return &Braintree{
		bt: braintree.New(
			env,
			config.BraintreeMerchantID(),
			config.BraintreePublicKey(),
			config.BraintreePrivateKey(),
		),
	}
}

func (g *Braintree) ClientToken(ctx context.Context) (string, error) {
	token, err := g.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: braintree client token: %v", apperr.ErrCollaborator, err)
	}
	return token, nil
}

func (g *Braintree) Sale(ctx context.Context, amount float64, nonce string) (*Charge, error) {
	// Braintree wants a fixed-point amount; round to cents.
	cents := int64(math.Round(amount * 100))

	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: braintree sale: %v", apperr.ErrCollaborator, err)
	}

	return &Charge{TransactionID: tx.Id, Amount: amount}, nil
}
