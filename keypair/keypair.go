// Package keypair loads signing keys from files.
//
// Two formats are supported: the JSON array of 64 bytes written by
// solana-keygen, and a base58 encoded private key as exported by wallets.
package keypair

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// EnvKeypair is the environment variable used when no key path is given.
const EnvKeypair = "KEYPAIR"

// ErrNoKeypair is returned when neither a path nor EnvKeypair is set.
var ErrNoKeypair = errors.New("no keypair: use -k or the " + EnvKeypair + " environment variable")

// Path returns flagValue, or the content of EnvKeypair when flagValue is empty.
func Path(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := os.Getenv(EnvKeypair); p != "" {
		return p, nil
	}
	return "", ErrNoKeypair
}

// Load reads the keypair stored in file.
func Load(file string) (types.Account, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return types.Account{}, fmt.Errorf("cannot read keypair: %w", err)
	}
	acc, err := Parse(content)
	if err != nil {
		return types.Account{}, fmt.Errorf("invalid keypair file %q: %w", file, err)
	}
	return acc, nil
}

// Parse decodes a keypair from either supported format.
func Parse(content []byte) (types.Account, error) {
	content = bytes.TrimSpace(content)
	var key []byte
	if bytes.HasPrefix(content, []byte("[")) {
		var ints []int
		if err := json.Unmarshal(content, &ints); err != nil {
			return types.Account{}, err
		}
		key = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return types.Account{}, fmt.Errorf("byte %d out of range: %d", i, v)
			}
			key[i] = byte(v)
		}
	} else {
		var err error
		key, err = base58.Decode(string(content))
		if err != nil {
			return types.Account{}, err
		}
	}
	return types.AccountFromBytes(key)
}
