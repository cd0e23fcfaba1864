// Package pipeline drives an assembled deployment payload through gas
// estimation, optional simulation, submission, and confirmation.
package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"tokenfoundry/internal/chain"
	"tokenfoundry/internal/compiler"
	"tokenfoundry/internal/model"
)

// Backend is the chain-client surface the pipeline consumes.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitMined(ctx context.Context, txHash common.Hash, interval time.Duration) (*types.Receipt, error)
}

// Estimated gas is padded to tolerate state drift between estimation and
// inclusion.
const (
	gasBufferNum = 120
	gasBufferDen = 100
)

// Pipeline executes deployment payloads. On-chain failures come back as a
// ClassifiedError inside the result; the error return is reserved for
// caller bugs such as a missing collaborator or a chain-id mismatch.
type Pipeline struct {
	backend      Backend
	signer       chain.Signer
	logger       *zap.Logger
	pollInterval time.Duration
}

// New builds a Pipeline with its collaborators.
func New(backend Backend, signer chain.Signer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		backend:      backend,
		signer:       signer,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

// EstimateResult is the outcome of gas estimation. Exactly one of GasLimit
// and Failure is meaningful.
type EstimateResult struct {
	GasLimit uint64
	Failure  *model.ClassifiedError
}

// SimulateResult is the outcome of a dry-run call.
type SimulateResult struct {
	ReturnData []byte
	Failure    *model.ClassifiedError
}

// SubmitOptions controls submission behavior.
type SubmitOptions struct {
	// Simulate runs a dry-run call after estimation; a failed simulation
	// short-circuits before any signed transaction is sent.
	Simulate bool
	// GasLimit overrides estimation when nonzero. No buffer is applied.
	GasLimit uint64
}

// SubmitResult is the outcome of a submission attempt.
type SubmitResult struct {
	TxHash   common.Hash
	GasLimit uint64
	Failure  *model.ClassifiedError
}

func (p *Pipeline) check(ctx context.Context, payload *model.DeploymentPayload, needSigner bool) error {
	if p.backend == nil {
		return fmt.Errorf("chain backend is required")
	}
	if payload == nil {
		return fmt.Errorf("payload is required")
	}
	if needSigner && p.signer == nil {
		return fmt.Errorf("signer is required")
	}
	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != payload.ChainID {
		return fmt.Errorf("payload targets chain %d but client is connected to %s", payload.ChainID, chainID)
	}
	return nil
}

func (p *Pipeline) callMsg(payload *model.DeploymentPayload) ethereum.CallMsg {
	to := payload.To
	msg := ethereum.CallMsg{
		To:    &to,
		Data:  payload.Data,
		Value: payload.Value,
	}
	if p.signer != nil {
		msg.From = p.signer.Address()
	}
	return msg
}

// EstimateGas estimates gas for the payload and applies the buffer.
func (p *Pipeline) EstimateGas(ctx context.Context, payload *model.DeploymentPayload) (EstimateResult, error) {
	if err := p.check(ctx, payload, false); err != nil {
		return EstimateResult{}, err
	}

	gas, err := p.backend.EstimateGas(ctx, p.callMsg(payload))
	if err != nil {
		return EstimateResult{Failure: Classify(err)}, nil
	}
	return EstimateResult{GasLimit: gas * gasBufferNum / gasBufferDen}, nil
}

// Simulate dry-runs the payload without sending a transaction.
func (p *Pipeline) Simulate(ctx context.Context, payload *model.DeploymentPayload) (SimulateResult, error) {
	if err := p.check(ctx, payload, false); err != nil {
		return SimulateResult{}, err
	}

	out, err := p.backend.CallContract(ctx, p.callMsg(payload), nil)
	if err != nil {
		return SimulateResult{Failure: Classify(err)}, nil
	}
	return SimulateResult{ReturnData: out}, nil
}

// Submit estimates, optionally simulates, then signs and sends the
// deployment transaction. It returns as soon as the transaction is
// accepted by the node; Confirm waits for inclusion separately so callers
// can observe the pending hash immediately.
func (p *Pipeline) Submit(ctx context.Context, payload *model.DeploymentPayload, opts SubmitOptions) (SubmitResult, error) {
	if err := p.check(ctx, payload, true); err != nil {
		return SubmitResult{}, err
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		estimate, err := p.EstimateGas(ctx, payload)
		if err != nil {
			return SubmitResult{}, err
		}
		if estimate.Failure != nil {
			return SubmitResult{Failure: estimate.Failure}, nil
		}
		gasLimit = estimate.GasLimit
	}

	if opts.Simulate {
		simulation, err := p.Simulate(ctx, payload)
		if err != nil {
			return SubmitResult{}, err
		}
		if simulation.Failure != nil {
			p.logger.Warn("simulation failed, submission aborted",
				zap.String("kind", string(simulation.Failure.Kind)),
				zap.String("label", simulation.Failure.Label),
			)
			return SubmitResult{Failure: simulation.Failure}, nil
		}
	}

	nonce, err := p.backend.PendingNonceAt(ctx, p.signer.Address())
	if err != nil {
		return SubmitResult{Failure: Classify(err)}, nil
	}
	tip, err := p.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return SubmitResult{Failure: Classify(err)}, nil
	}
	head, err := p.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return SubmitResult{Failure: Classify(err)}, nil
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	to := payload.To
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(payload.ChainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     payload.Value,
		Data:      payload.Data,
	})
	signed, err := p.signer.SignTx(new(big.Int).SetUint64(payload.ChainID), tx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return SubmitResult{Failure: Classify(err)}, nil
	}

	p.logger.Info("deployment submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("gas_limit", gasLimit),
		zap.Uint64("nonce", nonce),
	)
	return SubmitResult{TxHash: signed.Hash(), GasLimit: gasLimit}, nil
}

// Confirm blocks until the submitted transaction is included, then reads
// the deployed token address from the factory's creation event. A receipt
// without the event is a protocol inconsistency and surfaces as an error.
func (p *Pipeline) Confirm(ctx context.Context, payload *model.DeploymentPayload, txHash common.Hash) (common.Address, error) {
	if err := p.check(ctx, payload, false); err != nil {
		return common.Address{}, err
	}

	receipt, err := p.backend.WaitMined(ctx, txHash, p.pollInterval)
	if err != nil {
		return common.Address{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("transaction %s reverted on chain", txHash.Hex())
	}

	token, err := extractTokenAddress(receipt, payload.To)
	if err != nil {
		return common.Address{}, err
	}

	p.logger.Info("deployment confirmed",
		zap.String("tx_hash", txHash.Hex()),
		zap.String("token", token.Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return token, nil
}

func extractTokenAddress(receipt *types.Receipt, factory common.Address) (common.Address, error) {
	factoryABI, err := compiler.FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	eventID := factoryABI.Events["TokenCreated"].ID

	for _, log := range receipt.Logs {
		if log == nil || log.Address != factory {
			continue
		}
		if len(log.Topics) < 2 || log.Topics[0] != eventID {
			continue
		}
		return common.BytesToAddress(log.Topics[1].Bytes()), nil
	}
	return common.Address{}, fmt.Errorf("no token creation event in receipt for %s", receipt.TxHash.Hex())
}
