// Package airdrop talks to the airdrop registration and proof retrieval
// services. The merkle tree itself is built elsewhere; this client only
// ships roots, tree dumps, and proofs.
package airdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Entry is one account/amount leaf of the claim tree. Amount is a decimal
// string in base token units.
type Entry struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// Proof is a merkle proof for one entry.
type Proof struct {
	Proof []string `json:"proof"`
	Entry Entry    `json:"entry"`
}

// Client calls the airdrop HTTP services. Network failures are not retried
// internally; the caller owns retry policy.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client against the service base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	TokenAddress string          `json:"tokenAddress"`
	MerkleRoot   string          `json:"merkleRoot"`
	Tree         json.RawMessage `json:"tree"`
}

type registerResponse struct {
	Success bool `json:"success"`
}

// Register uploads the full merkle tree dump for later proof retrieval.
func (c *Client) Register(ctx context.Context, token common.Address, merkleRoot common.Hash, tree json.RawMessage) error {
	body, err := json.Marshal(registerRequest{
		TokenAddress: token.Hex(),
		MerkleRoot:   merkleRoot.Hex(),
		Tree:         tree,
	})
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/airdrops", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("register airdrop: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("airdrop registration status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode registration response: %w", err)
	}
	if !decoded.Success {
		return fmt.Errorf("airdrop registration rejected")
	}
	return nil
}

type proofsResponse struct {
	Proofs []Proof `json:"proofs"`
}

// Proofs fetches the merkle proofs for a claimer of a token's airdrop.
func (c *Client) Proofs(ctx context.Context, token, claimer common.Address) ([]Proof, error) {
	query := url.Values{}
	query.Set("tokenAddress", token.Hex())
	query.Set("claimerAddress", claimer.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/proofs?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build proofs request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch proofs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("proof retrieval status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded proofsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode proofs response: %w", err)
	}
	return decoded.Proofs, nil
}
