package pipeline

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"tokenfoundry/internal/compiler"
	"tokenfoundry/internal/model"
)

type classification struct {
	kind  model.ErrorKind
	label string
}

// errorNameTable maps decoded revert names to classifications.
var errorNameTable = map[string]classification{
	"Deprecated":              {model.ErrKindState, "This deployment target has been deprecated"},
	"NoFeesToClaim":           {model.ErrKindState, "No fees to claim"},
	"NothingToClaim":          {model.ErrKindState, "Nothing to claim"},
	"ClaimNotUnlocked":        {model.ErrKindState, "Claim period has not started"},
	"ExtensionNotEnabled":     {model.ErrKindState, "Extension not enabled"},
	"LockerNotEnabled":        {model.ErrKindState, "Locker not enabled"},
	"MevModuleNotEnabled":     {model.ErrKindState, "MEV module not enabled"},
	"Unauthorized":            {model.ErrKindCaller, "Account is not authorized"},
	"InvalidTickRange":        {model.ErrKindCaller, "Invalid tick range"},
	"InvalidTickSpacing":      {model.ErrKindCaller, "Ticks are not aligned to the pool tick spacing"},
	"InvalidRewardBps":        {model.ErrKindCaller, "Reward shares do not sum to 10000 basis points"},
	"MaxExtensionsExceeded":   {model.ErrKindCaller, "Too many extensions"},
	"ExtensionSupplyExceeded": {model.ErrKindCaller, "Extensions exceed the supply cap"},
	"ZeroAddressNotAllowed":   {model.ErrKindCaller, "Zero address is not allowed"},
	"InvalidSalt":             {model.ErrKindCaller, "Salt does not produce the expected address"},
}

// errorSelectorTable maps raw 4-byte revert selectors to classifications.
// It covers errors outside the factory ABI that name decoding cannot reach.
var errorSelectorTable = map[string]classification{
	"0x7e5ba1ad": {model.ErrKindState, "Hook not enabled."},
	"0x82b42900": {model.ErrKindCaller, "Account is not authorized"},
	"0x90bfb865": {model.ErrKindState, "Wrapped call to the pool manager failed"},
}

// dataError is the go-ethereum JSON-RPC error carrying revert data.
type dataError interface {
	Error() string
	ErrorData() interface{}
}

// Classify maps a low-level failure into the stable error taxonomy. The
// lookup is three-tier: decoded revert name, then raw 4-byte selector,
// then a generic fallback preserving the raw identifier.
func Classify(err error) *model.ClassifiedError {
	if err == nil {
		return nil
	}

	if revert, ok := revertData(err); ok && len(revert) >= 4 {
		selector := "0x" + hex.EncodeToString(revert[:4])

		if name, ok := revertName(revert); ok {
			if c, ok := errorNameTable[name]; ok {
				return &model.ClassifiedError{Kind: c.kind, Label: c.label, Raw: name, Cause: err}
			}
			if c, ok := errorSelectorTable[selector]; ok {
				return &model.ClassifiedError{Kind: c.kind, Label: c.label, Raw: name, Cause: err}
			}
			return &model.ClassifiedError{Kind: model.ErrKindUnknown, Label: "Unrecognized contract error", Raw: name, Cause: err}
		}

		if c, ok := errorSelectorTable[selector]; ok {
			return &model.ClassifiedError{Kind: c.kind, Label: c.label, Raw: selector, Cause: err}
		}
		return &model.ClassifiedError{Kind: model.ErrKindUnknown, Label: "Unrecognized contract error", Raw: selector, Cause: err}
	}

	if strings.Contains(err.Error(), "insufficient funds") {
		return &model.ClassifiedError{Kind: model.ErrKindCaller, Label: "Insufficient funds", Cause: err}
	}

	return &model.ClassifiedError{Kind: model.ErrKindUnknown, Label: "Unrecognized failure", Raw: err.Error(), Cause: err}
}

// revertData walks the error chain looking for JSON-RPC revert data.
func revertData(err error) ([]byte, bool) {
	for err != nil {
		if de, ok := err.(dataError); ok {
			if data := decodeErrorData(de.ErrorData()); data != nil {
				return data, true
			}
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

func decodeErrorData(data interface{}) []byte {
	raw, ok := data.(string)
	if !ok {
		return nil
	}
	decoded, err := hexutil.Decode(raw)
	if err != nil {
		return nil
	}
	return decoded
}

// revertName resolves a revert selector to an error name through the
// factory ABI. Decoding fails when the deployed contract reverts with an
// error variant the local interface definitions do not include.
func revertName(revert []byte) (string, bool) {
	factory, err := compiler.FactoryABI()
	if err != nil {
		return "", false
	}
	abiErr, err := factory.ErrorByID([4]byte(revert[:4]))
	if err != nil {
		return "", false
	}
	return abiErr.Name, true
}
