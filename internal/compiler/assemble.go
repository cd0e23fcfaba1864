package compiler

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenfoundry/internal/miner"
	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

// Compiler turns deployment requests into binary-exact factory call
// payloads. It is pure with respect to its inputs; the only suspension
// point is the salt-resolver query.
type Compiler struct {
	registry *registry.Registry
	resolver miner.SaltResolver
	logger   *zap.Logger
}

// New builds a Compiler. The resolver may be nil when vanity mining is
// never requested.
func New(reg *registry.Registry, resolver miner.SaltResolver, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{registry: reg, resolver: resolver, logger: logger}
}

// Compile validates the request and assembles the deployToken payload.
// Validation, precision, and configuration failures abort before any
// payload bytes are produced.
func (c *Compiler) Compile(ctx context.Context, req model.DeploymentRequest) (*model.DeploymentPayload, error) {
	if c.registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	target, ok := c.registry.Target(req.ChainID)
	if !ok {
		return nil, &model.ConfigurationError{
			Reason: fmt.Sprintf("chain %d is not a supported deployment target", req.ChainID),
		}
	}

	cfg, err := Normalize(req, target)
	if err != nil {
		return nil, err
	}

	hook, err := EncodeFees(cfg, target)
	if err != nil {
		return nil, err
	}

	mevModule, err := EncodeMevModule(cfg, target)
	if err != nil {
		return nil, err
	}

	extensions, err := ComposeExtensions(cfg, target)
	if err != nil {
		return nil, err
	}

	salt, expected, err := c.resolveSalt(ctx, cfg, target)
	if err != nil {
		return nil, err
	}

	deployment := DeploymentConfig{
		TokenConfig: TokenConfig{
			TokenAdmin:         cfg.TokenAdmin,
			Name:               cfg.Name,
			Symbol:             cfg.Symbol,
			Salt:               salt,
			Image:              cfg.Image,
			Metadata:           cfg.Metadata,
			Context:            cfg.Context,
			OriginatingChainId: new(big.Int).SetUint64(cfg.ChainID),
		},
		LockerConfig: buildLockerConfig(cfg, target),
		PoolConfig: PoolConfig{
			Hook:                   hook.Hook,
			PairedToken:            cfg.PairedToken,
			TickIfToken0IsNewToken: big.NewInt(int64(cfg.StartingTick)),
			TickSpacing:            big.NewInt(int64(cfg.TickSpacing)),
			PoolData:               hook.PoolData,
		},
		MevModuleConfig:  mevModule,
		ExtensionConfigs: buildExtensionConfigs(extensions),
	}

	factory, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	data, err := factory.Pack("deployToken", deployment)
	if err != nil {
		return nil, fmt.Errorf("pack deployToken: %w", err)
	}

	value := big.NewInt(0)
	for _, ext := range extensions {
		if ext.MsgValue != nil && ext.MsgValue.Sign() > 0 {
			value.Add(value, ext.MsgValue)
		}
	}

	payload := &model.DeploymentPayload{
		ChainID:         cfg.ChainID,
		To:              target.Factory,
		Data:            data,
		Value:           value,
		Salt:            salt,
		ExpectedAddress: expected,
	}
	copy(payload.Selector[:], factory.Methods["deployToken"].ID)

	c.logger.Debug("payload assembled",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("factory", target.Factory.Hex()),
		zap.Int("extensions", len(extensions)),
		zap.Bool("vanity", cfg.Vanity),
	)

	return payload, nil
}

// resolveSalt queries the mining oracle when a vanity address was
// requested. Otherwise the salt stays zero and no address is expected; the
// real address is read back from the deployment event after confirmation.
func (c *Compiler) resolveSalt(ctx context.Context, cfg *model.NormalizedConfig, target registry.Target) ([32]byte, *common.Address, error) {
	var salt [32]byte
	if !cfg.Vanity {
		return salt, nil, nil
	}
	if c.resolver == nil {
		return salt, nil, fmt.Errorf("vanity requested but no salt resolver is configured")
	}

	ctorArgs, err := miner.EncodeConstructorArgs(
		cfg.Name, cfg.Symbol, cfg.TokenAdmin,
		cfg.Image, cfg.Metadata, cfg.Context,
		new(big.Int).SetUint64(cfg.ChainID),
	)
	if err != nil {
		return salt, nil, err
	}
	initCodeHash := miner.InitCodeHash(target.TokenCreationCode, ctorArgs)

	result, err := c.resolver.Resolve(ctx, cfg.TokenAdmin, target.Factory, initCodeHash, target.VanitySuffix)
	if err != nil {
		return salt, nil, fmt.Errorf("resolve vanity salt: %w", err)
	}

	address := result.Address
	return result.Salt, &address, nil
}

func buildLockerConfig(cfg *model.NormalizedConfig, target registry.Target) LockerConfig {
	locker := LockerConfig{
		Locker:           target.Locker,
		RewardAdmins:     make([]common.Address, 0, len(cfg.Rewards)),
		RewardRecipients: make([]common.Address, 0, len(cfg.Rewards)),
		RewardBps:        make([]uint16, 0, len(cfg.Rewards)),
		TickLower:        make([]*big.Int, 0, len(cfg.Positions)),
		TickUpper:        make([]*big.Int, 0, len(cfg.Positions)),
		PositionBps:      make([]uint16, 0, len(cfg.Positions)),
		LockerData:       []byte{},
	}
	for _, reward := range cfg.Rewards {
		locker.RewardAdmins = append(locker.RewardAdmins, reward.Admin)
		locker.RewardRecipients = append(locker.RewardRecipients, reward.Recipient)
		locker.RewardBps = append(locker.RewardBps, reward.Bps)
	}
	for _, position := range cfg.Positions {
		locker.TickLower = append(locker.TickLower, big.NewInt(int64(position.TickLower)))
		locker.TickUpper = append(locker.TickUpper, big.NewInt(int64(position.TickUpper)))
		locker.PositionBps = append(locker.PositionBps, position.Bps)
	}
	return locker
}

func buildExtensionConfigs(extensions []model.Extension) []ExtensionConfig {
	configs := make([]ExtensionConfig, 0, len(extensions))
	for _, ext := range extensions {
		msgValue := ext.MsgValue
		if msgValue == nil {
			msgValue = big.NewInt(0)
		}
		configs = append(configs, ExtensionConfig{
			Extension:     ext.Target,
			MsgValue:      msgValue,
			ExtensionBps:  ext.AllocationBps,
			ExtensionData: ext.Data,
		})
	}
	return configs
}
