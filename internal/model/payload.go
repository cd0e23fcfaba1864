package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentPayload is the final call payload handed to the execution
// pipeline. Created once per deployment attempt, never mutated, consumed
// exactly once.
type DeploymentPayload struct {
	ChainID         uint64
	To              common.Address
	Selector        [4]byte
	Data            []byte
	Value           *big.Int
	Salt            [32]byte
	ExpectedAddress *common.Address
}

// DeploymentRecord is the persisted outcome of one deployment attempt.
type DeploymentRecord struct {
	ChainID         uint64 `json:"chain_id"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	TokenAdmin      string `json:"token_admin"`
	TxHash          string `json:"tx_hash,omitempty"`
	TokenAddress    string `json:"token_address,omitempty"`
	ExpectedAddress string `json:"expected_address,omitempty"`
	Vanity          bool   `json:"vanity"`
	GasLimit        uint64 `json:"gas_limit,omitempty"`
	Value           string `json:"value"`
	ErrorKind       string `json:"error_kind,omitempty"`
	ErrorLabel      string `json:"error_label,omitempty"`
	ErrorRaw        string `json:"error_raw,omitempty"`
	SubmittedAt     string `json:"submitted_at"`
}
