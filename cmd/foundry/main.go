package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokenfoundry/internal/airdrop"
	"tokenfoundry/internal/chain"
	"tokenfoundry/internal/compiler"
	"tokenfoundry/internal/config"
	"tokenfoundry/internal/miner"
	"tokenfoundry/internal/model"
	"tokenfoundry/internal/pipeline"
	"tokenfoundry/internal/registry"
	"tokenfoundry/internal/storage"
	"tokenfoundry/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "foundry",
		Short:        "Token deployment compiler",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Compile and submit a token deployment",
		RunE:  runDeploy,
	}
	addDeployFlags(deployCmd)
	deployCmd.Flags().String("pg-dsn", "", "Postgres DSN for deployment history")
	deployCmd.Flags().String("out", "./data/deployments.jsonl", "deployment record JSONL path")
	root.AddCommand(deployCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compile a deployment and dry-run it without submitting",
		RunE:  runSimulate,
	}
	addDeployFlags(simulateCmd)
	root.AddCommand(simulateCmd)

	mineCmd := &cobra.Command{
		Use:   "mine",
		Short: "Resolve a vanity salt for a deployment request",
		RunE:  runMine,
	}
	mineCmd.Flags().String("request", "", "deployment request JSON path")
	mineCmd.Flags().String("miner-url", "", "address mining oracle URL")
	mineCmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP timeout")
	mineCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(mineCmd)

	registerCmd := &cobra.Command{
		Use:   "register-airdrop",
		Short: "Upload an airdrop merkle tree for later proof retrieval",
		RunE:  runRegisterAirdrop,
	}
	registerCmd.Flags().String("token", "", "token address")
	registerCmd.Flags().String("merkle-root", "", "airdrop merkle root")
	registerCmd.Flags().String("tree", "", "merkle tree dump JSON path")
	registerCmd.Flags().String("airdrop-url", "", "airdrop service base URL")
	registerCmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP timeout")
	registerCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(registerCmd)

	proofsCmd := &cobra.Command{
		Use:   "claim-proofs",
		Short: "Fetch airdrop claim proofs for an account",
		RunE:  runClaimProofs,
	}
	proofsCmd.Flags().String("token", "", "token address")
	proofsCmd.Flags().String("claimer", "", "claimer address")
	proofsCmd.Flags().String("airdrop-url", "", "airdrop service base URL")
	proofsCmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP timeout")
	proofsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(proofsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDeployFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("private-key", "", "hex private key of the deploying account")
	cmd.Flags().String("request", "", "deployment request JSON path")
	cmd.Flags().Bool("simulate", true, "dry-run before submitting")
	cmd.Flags().String("miner-url", "", "address mining oracle URL")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP timeout")
	cmd.Flags().Duration("wait-timeout", 5*time.Minute, "confirmation wait timeout")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func loadRequest(path string) (model.DeploymentRequest, error) {
	var req model.DeploymentRequest
	if path == "" {
		return req, fmt.Errorf("request file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	req, err := loadRequest(cfg.RequestPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	signer, err := chain.NewKeySigner(cfg.PrivateKey)
	if err != nil {
		return err
	}

	resolver := miner.NewHTTPResolver(cfg.MinerURL, cfg.ReadTimeout)
	comp := compiler.New(registry.Default(), resolver, logger)

	payload, err := comp.Compile(ctx, req)
	if err != nil {
		return err
	}

	if payload.Value.Sign() > 0 {
		balance, err := chainClient.BalanceAt(ctx, signer.Address())
		if err != nil {
			logger.Warn("balance preflight failed", zap.Error(err))
		} else if balance.Cmp(payload.Value) < 0 {
			logger.Warn("account balance below attached value",
				zap.String("balance", balance.String()),
				zap.String("value", payload.Value.String()),
			)
		}
	}

	pipe := pipeline.New(chainClient, signer, logger)
	result, err := pipe.Submit(ctx, payload, pipeline.SubmitOptions{Simulate: cfg.Simulate})
	if err != nil {
		return err
	}

	record := model.DeploymentRecord{
		ChainID:     req.ChainID,
		Name:        req.Name,
		Symbol:      req.Symbol,
		TokenAdmin:  req.TokenAdmin,
		Vanity:      req.Vanity,
		GasLimit:    result.GasLimit,
		Value:       payload.Value.String(),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if payload.ExpectedAddress != nil {
		record.ExpectedAddress = payload.ExpectedAddress.Hex()
	}

	if result.Failure != nil {
		record.ErrorKind = string(result.Failure.Kind)
		record.ErrorLabel = result.Failure.Label
		record.ErrorRaw = result.Failure.Raw
		persistRecord(ctx, cfg, logger, record)
		return fmt.Errorf("deployment failed: %s", result.Failure.Error())
	}
	record.TxHash = result.TxHash.Hex()

	logger.Info("waiting for confirmation", zap.String("tx_hash", result.TxHash.Hex()))
	waitCtx, cancel := context.WithTimeout(ctx, cfg.WaitTimeout)
	defer cancel()

	token, err := pipe.Confirm(waitCtx, payload, result.TxHash)
	if err != nil {
		persistRecord(ctx, cfg, logger, record)
		return fmt.Errorf("confirm deployment: %w", err)
	}
	record.TokenAddress = token.Hex()
	persistRecord(ctx, cfg, logger, record)

	logger.Info("token deployed",
		zap.String("token", token.Hex()),
		zap.String("tx_hash", result.TxHash.Hex()),
	)
	return nil
}

func persistRecord(ctx context.Context, cfg config.Config, logger *zap.Logger, record model.DeploymentRecord) {
	var sink storage.Storage = storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutDeployment(record); err != nil {
		logger.Warn("write deployment record", zap.Error(err))
	}
	if cfg.PGDSN == "" {
		return
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		logger.Warn("connect deployment store", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.InsertDeployments(ctx, []model.DeploymentRecord{record}); err != nil {
		logger.Warn("insert deployment record", zap.Error(err))
	}
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	req, err := loadRequest(cfg.RequestPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var signer chain.Signer
	if cfg.PrivateKey != "" {
		signer, err = chain.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return err
		}
	}

	resolver := miner.NewHTTPResolver(cfg.MinerURL, cfg.ReadTimeout)
	comp := compiler.New(registry.Default(), resolver, logger)

	payload, err := comp.Compile(ctx, req)
	if err != nil {
		return err
	}

	pipe := pipeline.New(chainClient, signer, logger)
	result, err := pipe.Simulate(ctx, payload)
	if err != nil {
		return err
	}
	if result.Failure != nil {
		return fmt.Errorf("simulation failed: %s", result.Failure.Error())
	}

	logger.Info("simulation ok",
		zap.Int("calldata_bytes", len(payload.Data)),
		zap.String("value", payload.Value.String()),
	)
	return nil
}

func runMine(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	req, err := loadRequest(cfg.RequestPath)
	if err != nil {
		return err
	}

	reg := registry.Default()
	target, ok := reg.Target(req.ChainID)
	if !ok {
		return fmt.Errorf("chain %d is not a supported deployment target", req.ChainID)
	}

	normalized, err := compiler.Normalize(req, target)
	if err != nil {
		return err
	}

	ctorArgs, err := miner.EncodeConstructorArgs(
		normalized.Name, normalized.Symbol, normalized.TokenAdmin,
		normalized.Image, normalized.Metadata, normalized.Context,
		new(big.Int).SetUint64(normalized.ChainID),
	)
	if err != nil {
		return err
	}
	initCodeHash := miner.InitCodeHash(target.TokenCreationCode, ctorArgs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := miner.NewHTTPResolver(cfg.MinerURL, cfg.ReadTimeout)
	result, err := resolver.Resolve(ctx, normalized.TokenAdmin, target.Factory, initCodeHash, target.VanitySuffix)
	if err != nil {
		return err
	}

	logger.Info("salt resolved",
		zap.String("address", result.Address.Hex()),
		zap.String("salt", fmt.Sprintf("0x%x", result.Salt)),
		zap.String("init_code_hash", initCodeHash.Hex()),
	)
	return nil
}

func runRegisterAirdrop(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tokenStr, _ := cmd.Flags().GetString("token")
	rootStr, _ := cmd.Flags().GetString("merkle-root")
	treePath, _ := cmd.Flags().GetString("tree")
	if !common.IsHexAddress(tokenStr) {
		return fmt.Errorf("valid token address is required")
	}
	rootBytes, err := hexutil.Decode(rootStr)
	if err != nil || len(rootBytes) != 32 {
		return fmt.Errorf("valid 32-byte merkle root is required")
	}
	if treePath == "" {
		return fmt.Errorf("tree file is required")
	}
	tree, err := os.ReadFile(treePath)
	if err != nil {
		return fmt.Errorf("read tree: %w", err)
	}
	if !json.Valid(tree) {
		return fmt.Errorf("tree file is not valid JSON")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := airdrop.NewClient(cfg.AirdropURL, cfg.ReadTimeout)
	if err := client.Register(ctx, common.HexToAddress(tokenStr), common.BytesToHash(rootBytes), json.RawMessage(tree)); err != nil {
		return err
	}

	logger.Info("airdrop registered",
		zap.String("token", common.HexToAddress(tokenStr).Hex()),
		zap.String("merkle_root", common.BytesToHash(rootBytes).Hex()),
	)
	return nil
}

func runClaimProofs(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tokenStr, _ := cmd.Flags().GetString("token")
	claimerStr, _ := cmd.Flags().GetString("claimer")
	if !common.IsHexAddress(tokenStr) {
		return fmt.Errorf("valid token address is required")
	}
	if !common.IsHexAddress(claimerStr) {
		return fmt.Errorf("valid claimer address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := airdrop.NewClient(cfg.AirdropURL, cfg.ReadTimeout)
	proofs, err := client.Proofs(ctx, common.HexToAddress(tokenStr), common.HexToAddress(claimerStr))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(proofs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proofs: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
