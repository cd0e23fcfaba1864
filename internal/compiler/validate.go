package compiler

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"tokenfoundry/internal/model"
	"tokenfoundry/internal/registry"
)

// Pool defaults applied when the request leaves the pool unspecified:
// a single full-range position starting at the default launch tick.
const (
	defaultStartingTick = -230_400
	defaultTickSpacing  = 200
	defaultUpperTick    = 887_200
	defaultFeeBps       = 100
)

const maxRewardRecipients = 7

const tokenDecimals = 18

// Normalize validates a raw deployment request against the resolved target
// and applies defaults. It is all-or-nothing: the first violated constraint
// aborts with a ValidationError and no partial config is exposed.
// Field-level checks run before cross-field checks.
func Normalize(req model.DeploymentRequest, target registry.Target) (*model.NormalizedConfig, error) {
	if req.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if req.Symbol == "" {
		return nil, &model.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	admin, err := parseAddress(req.TokenAdmin)
	if err != nil || admin == (common.Address{}) {
		return nil, &model.ValidationError{Field: "tokenAdmin", Reason: "must be a nonzero hex address"}
	}

	cfg := &model.NormalizedConfig{
		ChainID:    req.ChainID,
		Name:       req.Name,
		Symbol:     req.Symbol,
		Image:      req.Image,
		Metadata:   req.Metadata,
		Context:    req.Context,
		TokenAdmin: admin,
		Vanity:     req.Vanity,
	}

	if err := normalizePool(req.Pool, target, cfg); err != nil {
		return nil, err
	}
	if err := normalizePoolInit(req.PoolInit, cfg); err != nil {
		return nil, err
	}
	if err := normalizeFees(req.Fees, target, cfg); err != nil {
		return nil, err
	}
	if err := normalizeSniper(req.Sniper, target, cfg); err != nil {
		return nil, err
	}
	if err := normalizeVault(req.Vault, admin, cfg); err != nil {
		return nil, err
	}
	if err := normalizeAirdrop(req.Airdrop, admin, cfg); err != nil {
		return nil, err
	}
	if err := normalizeDevBuy(req.DevBuy, admin, cfg); err != nil {
		return nil, err
	}
	if err := normalizeRewards(req.RewardRecipients, admin, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func normalizePool(spec *model.PoolSpec, target registry.Target, cfg *model.NormalizedConfig) error {
	cfg.PairedToken = target.Weth
	cfg.StartingTick = defaultStartingTick
	cfg.TickSpacing = defaultTickSpacing
	cfg.Positions = []model.Position{{TickLower: defaultStartingTick, TickUpper: defaultUpperTick, Bps: registry.BpsDenominator}}
	if spec == nil {
		return nil
	}

	if spec.PairedToken != "" {
		paired, err := parseAddress(spec.PairedToken)
		if err != nil || paired == (common.Address{}) {
			return &model.ValidationError{Field: "pool.pairedToken", Reason: "must be a nonzero hex address"}
		}
		cfg.PairedToken = paired
	}
	if spec.TickSpacing != 0 {
		if spec.TickSpacing < 0 {
			return &model.ValidationError{Field: "pool.tickSpacing", Reason: "must be positive"}
		}
		cfg.TickSpacing = spec.TickSpacing
	}
	if spec.StartingTick != nil {
		cfg.StartingTick = *spec.StartingTick
	}
	if cfg.StartingTick%cfg.TickSpacing != 0 {
		return &model.ValidationError{
			Field:  "pool.startingTick",
			Reason: fmt.Sprintf("tick %d is not a multiple of spacing %d", cfg.StartingTick, cfg.TickSpacing),
		}
	}

	if len(spec.Positions) == 0 {
		// Default single position: lower tick follows the starting tick and
		// the upper tick snaps down to the nearest multiple of the spacing.
		upper := defaultUpperTick - defaultUpperTick%cfg.TickSpacing
		cfg.Positions = []model.Position{{TickLower: cfg.StartingTick, TickUpper: upper, Bps: registry.BpsDenominator}}
		return nil
	}

	positions := make([]model.Position, 0, len(spec.Positions))
	var sum uint64
	startsAtInitial := false
	for i, p := range spec.Positions {
		if p.TickLower >= p.TickUpper {
			return &model.ValidationError{
				Field:  fmt.Sprintf("pool.positions[%d]", i),
				Reason: fmt.Sprintf("tick range [%d, %d) is empty", p.TickLower, p.TickUpper),
			}
		}
		if p.TickLower%cfg.TickSpacing != 0 || p.TickUpper%cfg.TickSpacing != 0 {
			return &model.ValidationError{
				Field:  fmt.Sprintf("pool.positions[%d]", i),
				Reason: fmt.Sprintf("ticks must be multiples of spacing %d", cfg.TickSpacing),
			}
		}
		if p.Bps == 0 {
			return &model.ValidationError{
				Field:  fmt.Sprintf("pool.positions[%d].bps", i),
				Reason: "must be positive",
			}
		}
		if p.TickLower == cfg.StartingTick {
			startsAtInitial = true
		}
		sum += uint64(p.Bps)
		positions = append(positions, model.Position{TickLower: p.TickLower, TickUpper: p.TickUpper, Bps: p.Bps})
	}
	if sum != registry.BpsDenominator {
		return &model.ValidationError{
			Field:  "pool.positions",
			Reason: fmt.Sprintf("basis points sum to %d, want %d", sum, registry.BpsDenominator),
		}
	}
	if !startsAtInitial {
		return &model.ValidationError{
			Field:  "pool.positions",
			Reason: fmt.Sprintf("no position starts at the pool starting tick %d", cfg.StartingTick),
		}
	}

	cfg.Positions = positions
	return nil
}

func normalizePoolInit(spec *model.PoolInitSpec, cfg *model.NormalizedConfig) error {
	if spec == nil {
		return nil
	}
	ext, err := parseAddress(spec.Extension)
	if err != nil || ext == (common.Address{}) {
		return &model.ValidationError{Field: "poolInit.extension", Reason: "must be a nonzero hex address"}
	}
	var data []byte
	if spec.Data != "" {
		data, err = hexutil.Decode(spec.Data)
		if err != nil {
			return &model.ValidationError{Field: "poolInit.data", Reason: "must be hex-encoded bytes"}
		}
	}
	cfg.PoolInit = &model.PoolInit{Extension: ext, Data: data}
	return nil
}

func normalizeFees(spec *model.FeeSpec, target registry.Target, cfg *model.NormalizedConfig) error {
	if spec == nil {
		cfg.Fees = model.StaticFee{TokenFeeBps: defaultFeeBps, PairedFeeBps: defaultFeeBps}
		return nil
	}

	switch strings.ToLower(spec.Type) {
	case "static":
		if err := checkFeeBounds("fees.tokenFeeBps", spec.TokenFeeBps, target); err != nil {
			return err
		}
		if err := checkFeeBounds("fees.pairedFeeBps", spec.PairedFeeBps, target); err != nil {
			return err
		}
		cfg.Fees = model.StaticFee{TokenFeeBps: spec.TokenFeeBps, PairedFeeBps: spec.PairedFeeBps}
	case "dynamic":
		if err := checkFeeBounds("fees.baseFeeBps", spec.BaseFeeBps, target); err != nil {
			return err
		}
		if err := checkFeeBounds("fees.maxFeeBps", spec.MaxFeeBps, target); err != nil {
			return err
		}
		if spec.BaseFeeBps > spec.MaxFeeBps {
			return &model.ValidationError{Field: "fees.baseFeeBps", Reason: "must not exceed maxFeeBps"}
		}
		numerator := big.NewInt(0)
		if spec.FeeControlNumerator != "" {
			parsed, ok := new(big.Int).SetString(spec.FeeControlNumerator, 10)
			if !ok || parsed.Sign() < 0 {
				return &model.ValidationError{Field: "fees.feeControlNumerator", Reason: "must be a nonnegative decimal integer"}
			}
			numerator = parsed
		}
		if spec.DecayFilterBps > registry.BpsDenominator {
			return &model.ValidationError{Field: "fees.decayFilterBps", Reason: "must not exceed 10000"}
		}
		cfg.Fees = model.DynamicFee{
			BaseFeeBps:          spec.BaseFeeBps,
			MaxFeeBps:           spec.MaxFeeBps,
			DecayWindow:         spec.DecayWindow,
			ResetWindow:         spec.ResetWindow,
			ResetTickFilter:     spec.ResetTickFilter,
			FeeControlNumerator: numerator,
			DecayFilterBps:      spec.DecayFilterBps,
		}
	default:
		return &model.ValidationError{Field: "fees.type", Reason: fmt.Sprintf("unknown variant %q", spec.Type)}
	}
	return nil
}

func checkFeeBounds(field string, bps uint32, target registry.Target) error {
	if bps < target.MinFeeBps || bps > target.MaxFeeBps {
		return &model.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%d outside protocol bounds [%d, %d]", bps, target.MinFeeBps, target.MaxFeeBps),
		}
	}
	return nil
}

func normalizeSniper(spec *model.SniperSpec, target registry.Target, cfg *model.NormalizedConfig) error {
	if spec == nil {
		return nil
	}
	if err := checkFeeBounds("sniper.startingFeeBps", spec.StartingFeeBps, target); err != nil {
		return err
	}
	if spec.EndingFeeBps >= spec.StartingFeeBps {
		return &model.ValidationError{Field: "sniper.endingFeeBps", Reason: "must be below startingFeeBps"}
	}
	if spec.SecondsToDecay == 0 {
		return &model.ValidationError{Field: "sniper.secondsToDecay", Reason: "must be positive"}
	}
	cfg.Sniper = &model.SniperParams{
		StartingFeeBps: spec.StartingFeeBps,
		EndingFeeBps:   spec.EndingFeeBps,
		SecondsToDecay: spec.SecondsToDecay,
	}
	return nil
}

func normalizeVault(spec *model.VaultSpec, admin common.Address, cfg *model.NormalizedConfig) error {
	if spec == nil {
		return nil
	}
	if spec.Percentage == 0 {
		return &model.ValidationError{Field: "vault.percentage", Reason: "must be positive"}
	}
	bps := uint32(spec.Percentage) * 100
	if bps > registry.MaxExtensionBps {
		return &model.ValidationError{
			Field:  "vault.percentage",
			Reason: fmt.Sprintf("%d%% exceeds the %d bps vault cap", spec.Percentage, registry.MaxExtensionBps),
		}
	}
	recipient := admin
	if spec.Recipient != "" {
		parsed, err := parseAddress(spec.Recipient)
		if err != nil || parsed == (common.Address{}) {
			return &model.ValidationError{Field: "vault.recipient", Reason: "must be a nonzero hex address"}
		}
		recipient = parsed
	}
	cfg.Vault = &model.VaultParams{
		Recipient:       recipient,
		LockupDuration:  spec.LockupDuration,
		VestingDuration: spec.VestingDuration,
		Bps:             uint16(bps),
	}
	return nil
}

func normalizeAirdrop(spec *model.AirdropSpec, admin common.Address, cfg *model.NormalizedConfig) error {
	if spec == nil {
		return nil
	}
	root, err := parseHash(spec.MerkleRoot)
	if err != nil || root == (common.Hash{}) {
		return &model.ValidationError{Field: "airdrop.merkleRoot", Reason: "must be a nonzero 32-byte hex value"}
	}
	amount, err := parseTokenAmount(spec.Amount)
	if err != nil || amount.Sign() <= 0 {
		return &model.ValidationError{Field: "airdrop.amount", Reason: "must be a positive decimal token amount"}
	}
	airdropAdmin := admin
	if spec.Admin != "" {
		parsed, err := parseAddress(spec.Admin)
		if err != nil || parsed == (common.Address{}) {
			return &model.ValidationError{Field: "airdrop.admin", Reason: "must be a nonzero hex address"}
		}
		airdropAdmin = parsed
	}
	cfg.Airdrop = &model.AirdropParams{
		Admin:           airdropAdmin,
		MerkleRoot:      root,
		LockupDuration:  spec.LockupDuration,
		VestingDuration: spec.VestingDuration,
		Amount:          amount,
	}
	return nil
}

func normalizeDevBuy(spec *model.DevBuySpec, admin common.Address, cfg *model.NormalizedConfig) error {
	if spec == nil {
		return nil
	}
	value, err := parseTokenAmount(spec.Value)
	if err != nil || value.Sign() <= 0 {
		return &model.ValidationError{Field: "devBuy.value", Reason: "must be a positive decimal ETH amount"}
	}
	amountOutMin := big.NewInt(0)
	if spec.AmountOutMin != "" {
		amountOutMin, err = parseTokenAmount(spec.AmountOutMin)
		if err != nil || amountOutMin.Sign() < 0 {
			return &model.ValidationError{Field: "devBuy.amountOutMin", Reason: "must be a nonnegative decimal token amount"}
		}
	}
	recipient := admin
	if spec.Recipient != "" {
		parsed, err := parseAddress(spec.Recipient)
		if err != nil || parsed == (common.Address{}) {
			return &model.ValidationError{Field: "devBuy.recipient", Reason: "must be a nonzero hex address"}
		}
		recipient = parsed
	}
	var poolHook common.Address
	if spec.PoolHook != "" {
		poolHook, err = parseAddress(spec.PoolHook)
		if err != nil {
			return &model.ValidationError{Field: "devBuy.poolHook", Reason: "must be a hex address"}
		}
	}
	cfg.DevBuy = &model.DevBuyParams{
		Recipient:       recipient,
		Value:           value,
		AmountOutMin:    amountOutMin,
		LegacyFeeTier:   spec.LegacyFeeTier,
		PoolFee:         spec.PoolFee,
		PoolTickSpacing: spec.PoolTickSpacing,
		PoolHook:        poolHook,
	}
	return nil
}

func normalizeRewards(specs []model.RewardRecipientSpec, admin common.Address, cfg *model.NormalizedConfig) error {
	if len(specs) == 0 {
		// All rewards fall back to the token administrator.
		cfg.Rewards = []model.Reward{{Recipient: admin, Admin: admin, Bps: registry.BpsDenominator}}
		return nil
	}
	if len(specs) > maxRewardRecipients {
		return &model.ValidationError{
			Field:  "rewardRecipients",
			Reason: fmt.Sprintf("at most %d recipients are supported", maxRewardRecipients),
		}
	}

	rewards := make([]model.Reward, 0, len(specs))
	var sum uint64
	for i, spec := range specs {
		recipient, err := parseAddress(spec.Recipient)
		if err != nil || recipient == (common.Address{}) {
			return &model.ValidationError{
				Field:  fmt.Sprintf("rewardRecipients[%d].recipient", i),
				Reason: "must be a nonzero hex address",
			}
		}
		rewardAdmin := recipient
		if spec.Admin != "" {
			rewardAdmin, err = parseAddress(spec.Admin)
			if err != nil || rewardAdmin == (common.Address{}) {
				return &model.ValidationError{
					Field:  fmt.Sprintf("rewardRecipients[%d].admin", i),
					Reason: "must be a nonzero hex address",
				}
			}
		}
		if spec.Bps == 0 {
			return &model.ValidationError{
				Field:  fmt.Sprintf("rewardRecipients[%d].bps", i),
				Reason: "must be positive",
			}
		}
		sum += uint64(spec.Bps)
		rewards = append(rewards, model.Reward{Recipient: recipient, Admin: rewardAdmin, Bps: spec.Bps})
	}
	if sum != registry.BpsDenominator {
		return &model.ValidationError{
			Field:  "rewardRecipients",
			Reason: fmt.Sprintf("basis points sum to %d, want %d", sum, registry.BpsDenominator),
		}
	}

	cfg.Rewards = rewards
	return nil
}

func parseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

func parseHash(input string) (common.Hash, error) {
	data, err := hexutil.Decode(strings.TrimSpace(input))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash: %w", err)
	}
	if len(data) != 32 {
		return common.Hash{}, fmt.Errorf("invalid hash length: %d", len(data))
	}
	return common.BytesToHash(data), nil
}

// parseTokenAmount converts a human decimal quantity into base units.
func parseTokenAmount(input string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("invalid decimal amount: %w", err)
	}
	shifted := d.Shift(tokenDecimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", input, tokenDecimals)
	}
	return shifted.BigInt(), nil
}
