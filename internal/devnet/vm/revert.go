package vm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// revertSelector is the selector of Error(string)
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var stringArgs = func() abi.Arguments {
	typ, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: typ}}
}()

// RevertError is returned when a contract reverts. It satisfies the rpc.Error and
// rpc.DataError interfaces so the JSON-RPC server reports it like geth does.
type RevertError struct {
	Reason string
}

// Revert returns a RevertError with a formatted reason
func Revert(format string, args ...any) *RevertError {
	return &RevertError{Reason: fmt.Sprintf(format, args...)}
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// ErrorCode is the JSON-RPC error code geth uses for reverts
func (e *RevertError) ErrorCode() int {
	return 3
}

// ErrorData is the ABI encoded Error(string) payload
func (e *RevertError) ErrorData() interface{} {
	return hexutil.Encode(e.Output())
}

// Output is the raw revert data
func (e *RevertError) Output() []byte {
	packed, err := stringArgs.Pack(e.Reason)
	if err != nil {
		return nil
	}
	return append(append([]byte{}, revertSelector...), packed...)
}

// IsRevert reports whether err is a contract revert and returns its reason
func IsRevert(err error) (string, bool) {
	var rerr *RevertError
	if errors.As(err, &rerr) {
		return rerr.Reason, true
	}
	return "", false
}

// UnpackRevert decodes Error(string) revert data
func UnpackRevert(data []byte) (string, error) {
	if len(data) < 4 || string(data[:4]) != string(revertSelector) {
		return "", errors.New("not an Error(string) payload")
	}
	values, err := stringArgs.Unpack(data[4:])
	if err != nil {
		return "", err
	}
	return values[0].(string), nil
}
