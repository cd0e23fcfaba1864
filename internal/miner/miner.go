// Package miner derives the init-code hash for the token contract and
// resolves vanity deployment salts through an external mining oracle.
package miner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Result is a salt and the counterfactual address it produces.
type Result struct {
	Salt    [32]byte
	Address common.Address
}

// SaltResolver finds a salt whose resulting deployment address ends in the
// requested suffix. Implementations perform no local search; the oracle
// owns the brute force.
type SaltResolver interface {
	Resolve(ctx context.Context, admin, deployer common.Address, initCodeHash common.Hash, suffix string) (Result, error)
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var constructorArgs = abi.Arguments{
	{Name: "name", Type: mustType("string")},
	{Name: "symbol", Type: mustType("string")},
	{Name: "admin", Type: mustType("address")},
	{Name: "image", Type: mustType("string")},
	{Name: "metadata", Type: mustType("string")},
	{Name: "context", Type: mustType("string")},
	{Name: "originatingChainId", Type: mustType("uint256")},
}

// EncodeConstructorArgs encodes the token constructor arguments exactly as
// the factory passes them at deployment.
func EncodeConstructorArgs(name, symbol string, admin common.Address, image, metadata, socialContext string, originatingChainID *big.Int) ([]byte, error) {
	if originatingChainID == nil {
		originatingChainID = big.NewInt(0)
	}
	packed, err := constructorArgs.Pack(name, symbol, admin, image, metadata, socialContext, originatingChainID)
	if err != nil {
		return nil, fmt.Errorf("encode constructor args: %w", err)
	}
	return packed, nil
}

// InitCodeHash hashes the token creation bytecode concatenated with the
// encoded constructor arguments.
func InitCodeHash(creationCode, ctorArgs []byte) common.Hash {
	initCode := make([]byte, 0, len(creationCode)+len(ctorArgs))
	initCode = append(initCode, creationCode...)
	initCode = append(initCode, ctorArgs...)
	return crypto.Keccak256Hash(initCode)
}

// HTTPResolver queries the mining oracle over HTTP.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver builds a resolver against the oracle base URL.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type oracleResponse struct {
	Address string `json:"address"`
	Salt    string `json:"salt"`
}

// Resolve performs the idempotent oracle query. Network failures are not
// retried here; the caller owns retry policy.
func (r *HTTPResolver) Resolve(ctx context.Context, admin, deployer common.Address, initCodeHash common.Hash, suffix string) (Result, error) {
	query := url.Values{}
	query.Set("admin", admin.Hex())
	query.Set("deployer", deployer.Hex())
	query.Set("init_code_hash", initCodeHash.Hex())
	query.Set("suffix", suffix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build oracle request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("query mining oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("mining oracle status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode oracle response: %w", err)
	}

	saltBytes, err := hexutil.Decode(decoded.Salt)
	if err != nil || len(saltBytes) != 32 {
		return Result{}, fmt.Errorf("oracle returned invalid salt: %s", decoded.Salt)
	}
	if !common.IsHexAddress(decoded.Address) {
		return Result{}, fmt.Errorf("oracle returned invalid address: %s", decoded.Address)
	}

	var result Result
	copy(result.Salt[:], saltBytes)
	result.Address = common.HexToAddress(decoded.Address)
	return result, nil
}
