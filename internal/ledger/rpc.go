package ledger

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// RPCLedger adapts the JSON-RPC client to the Ledger interface. The node's
// transition gateway holds the signing capability; this adapter only shapes
// requests and classifies failures.
type RPCLedger struct {
	client *solana.Client
}

func NewRPCLedger(client *solana.Client) *RPCLedger {
	return &RPCLedger{client: client}
}

func (l *RPCLedger) GetAccount(ctx context.Context, addr solana.PublicKey) (*Account, error) {
	info, err := l.client.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	return &Account{
		Address: addr,
		Owner:   info.Owner,
		Data:    info.Data,
	}, nil
}

func (l *RPCLedger) ListProgramAccounts(ctx context.Context, programID solana.PublicKey, filters ...solana.MemcmpFilter) ([]Account, error) {
	keyed, err := l.client.GetProgramAccounts(ctx, programID, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(keyed))
	for _, ka := range keyed {
		out = append(out, Account{
			Address: ka.Address,
			Owner:   ka.Account.Owner,
			Data:    ka.Account.Data,
		})
	}
	return out, nil
}

func (l *RPCLedger) Apply(ctx context.Context, req WriteRequest) error {
	_, err := l.client.SubmitTransition(ctx, solana.Transition{
		Address:  req.Address,
		Caller:   req.Caller,
		Expected: req.Expected,
		Data:     req.Data,
		Space:    req.Space,
	})
	if err == nil {
		return nil
	}
	return classify(err)
}

// classify maps transport and gateway failures onto the ledger error
// taxonomy. A synchronous rejection is terminal; anything that may have
// applied after submission becomes ErrUnknownOutcome.
func classify(err error) error {
	var rpcErr *solana.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case solana.RPCCodeAccountInUse, solana.RPCCodePreconditionFailed:
			return fmt.Errorf("%w: %v", ErrConflict, rpcErr)
		case solana.RPCCodeAccountNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, rpcErr)
		}
		return rpcErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnknownOutcome, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrUnknownOutcome, err)
	}
	return err
}
