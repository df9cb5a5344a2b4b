package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Client is a JSON-RPC client for a Solana-style ledger node. Reads use the
// standard account RPCs; writes go through the node's transition gateway,
// which holds the signing capability and applies each request atomically.
type Client struct {
	endpoint   string
	apiKey     string
	commitment Commitment
	httpClient *http.Client
	reqID      atomic.Uint64
}

// NewClient creates a client for the given endpoint. An empty apiKey is
// valid for public endpoints.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		commitment: CommitmentConfirmed,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// WithCommitment sets the confirmation level used for reads.
func (c *Client) WithCommitment(commitment Commitment) *Client {
	c.commitment = commitment
	return c
}

// RPCError is a structured error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("RPC error: %s - %s", resp.Status, string(b))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		return json.Unmarshal(rpcResp.Result, out)
	}
	return nil
}

// AccountInfo is the decoded view of an on-chain account.
type AccountInfo struct {
	Owner    PublicKey
	Lamports uint64
	Data     []byte
	Slot     uint64
}

type rawAccount struct {
	Owner    string   `json:"owner"`
	Lamports uint64   `json:"lamports"`
	Data     []string `json:"data"` // [base64 payload, "base64"]
}

func (ra *rawAccount) decode(slot uint64) (*AccountInfo, error) {
	owner, err := PublicKeyFromBase58(ra.Owner)
	if err != nil {
		return nil, fmt.Errorf("bad account owner: %w", err)
	}
	var data []byte
	if len(ra.Data) > 0 {
		data, err = base64.StdEncoding.DecodeString(ra.Data[0])
		if err != nil {
			return nil, fmt.Errorf("bad account data: %w", err)
		}
	}
	return &AccountInfo{
		Owner:    owner,
		Lamports: ra.Lamports,
		Data:     data,
		Slot:     slot,
	}, nil
}

// GetAccountInfo fetches a single account. Returns (nil, nil) if the address
// holds no account at the requested commitment.
func (c *Client) GetAccountInfo(ctx context.Context, address PublicKey) (*AccountInfo, error) {
	var result struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value *rawAccount `json:"value"`
	}

	params := []any{
		address.String(),
		map[string]any{"encoding": "base64", "commitment": string(c.commitment)},
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}
	return result.Value.decode(result.Context.Slot)
}

// KeyedAccount pairs an account with its address, as returned by program
// account scans.
type KeyedAccount struct {
	Address PublicKey
	Account *AccountInfo
}

// MemcmpFilter matches accounts whose data equals the given bytes at offset.
type MemcmpFilter struct {
	Offset int
	Bytes  []byte
}

// GetProgramAccounts scans all accounts owned by programID, optionally
// filtered by data-prefix matches. This is a snapshot read with no isolation
// guarantee across calls.
func (c *Client) GetProgramAccounts(ctx context.Context, programID PublicKey, filters ...MemcmpFilter) ([]KeyedAccount, error) {
	cfg := map[string]any{
		"encoding":   "base64",
		"commitment": string(c.commitment),
	}
	if len(filters) > 0 {
		var fs []any
		for _, f := range filters {
			fs = append(fs, map[string]any{
				"memcmp": map[string]any{
					"offset":   f.Offset,
					"bytes":    base64.StdEncoding.EncodeToString(f.Bytes),
					"encoding": "base64",
				},
			})
		}
		cfg["filters"] = fs
	}

	var result []struct {
		Pubkey  string     `json:"pubkey"`
		Account rawAccount `json:"account"`
	}
	if err := c.call(ctx, "getProgramAccounts", []any{programID.String(), cfg}, &result); err != nil {
		return nil, err
	}

	accounts := make([]KeyedAccount, 0, len(result))
	for _, entry := range result {
		addr, err := PublicKeyFromBase58(entry.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("bad account address: %w", err)
		}
		info, err := entry.Account.decode(0)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, KeyedAccount{Address: addr, Account: info})
	}
	return accounts, nil
}

// GetHealth reports node liveness.
func (c *Client) GetHealth(ctx context.Context) error {
	var status string
	if err := c.call(ctx, "getHealth", nil, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}

// Transition is a signed state-transition request against a single account
// address. Expected holds the account bytes the transition was computed
// against (nil means "must not exist"); Data is the desired post-state (nil
// means close). The gateway applies it atomically or rejects it.
type Transition struct {
	Address  PublicKey `json:"address"`
	Caller   PublicKey `json:"caller"`
	Expected []byte    `json:"expected"`
	Data     []byte    `json:"data"`
	Space    uint64    `json:"space,omitempty"`
}

// TransitionResult is the gateway's commit acknowledgement.
type TransitionResult struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
}

// Gateway rejection codes, mirrored from the node's transition gateway.
const (
	RPCCodeAccountInUse       = -32001
	RPCCodeAccountNotFound    = -32002
	RPCCodePreconditionFailed = -32003
)

// SubmitTransition submits a conditional write and waits for the commit
// acknowledgement. A context deadline firing mid-flight means the outcome is
// unknown; callers must re-read the account before retrying.
func (c *Client) SubmitTransition(ctx context.Context, t Transition) (*TransitionResult, error) {
	payload := map[string]any{
		"address": t.Address.String(),
		"caller":  t.Caller.String(),
		"space":   t.Space,
	}
	if t.Expected != nil {
		payload["expected"] = base64.StdEncoding.EncodeToString(t.Expected)
	}
	if t.Data != nil {
		payload["data"] = base64.StdEncoding.EncodeToString(t.Data)
	}

	var result TransitionResult
	if err := c.call(ctx, "submitTransition", []any{payload}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForSignature polls until the given signature is finalized or the
// timeout elapses.
func (c *Client) WaitForSignature(ctx context.Context, signature string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		var result struct {
			Value []*struct {
				ConfirmationStatus string `json:"confirmationStatus"`
			} `json:"value"`
		}
		err := c.call(ctx, "getSignatureStatuses", []any{[]string{signature}}, &result)
		if err != nil {
			return err
		}
		if len(result.Value) > 0 && result.Value[0] != nil {
			if result.Value[0].ConfirmationStatus == string(CommitmentFinalized) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ConfirmPollInterval):
		}
	}

	return fmt.Errorf("signature not finalized within timeout")
}
