package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // Hash160 needs RIPEMD-160
)

const (
	CoinTypeBitcoin uint32 = 0
	CoinTypeStacks  uint32 = 5757

	// single-sig version bytes
	StacksMainnetVersion  byte = 22
	StacksTestnetVersion  byte = 26
	BitcoinMainnetVersion byte = 0x00
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Account is a development account derived from a mnemonic.
type Account struct {
	Index          uint32 `json:"index"`
	StacksAddress  string `json:"stacksAddress"`
	BitcoinAddress string `json:"bitcoinAddress"`
	DerivationPath string `json:"derivationPath"`
	PublicKey      string `json:"publicKey"`
}

// Deriver derives deterministic addresses from a BIP-39 mnemonic.
// It never exposes private keys.
type Deriver struct {
	seed    []byte
	mainnet bool
}

func NewDeriver(mnemonic, passphrase string, mainnet bool) (*Deriver, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return &Deriver{seed: bip39.NewSeed(mnemonic, passphrase), mainnet: mainnet}, nil
}

// Account derives the account at m/44'/5757'/0'/0/index. The Bitcoin address
// comes from m/44'/0'/0'/0/index.
func (d *Deriver) Account(index uint32) (*Account, error) {
	stxKey, err := deriveKey(d.seed, CoinTypeStacks, index)
	if err != nil {
		return nil, fmt.Errorf("derive stacks key: %w", err)
	}
	stxPub := compressedPubKey(stxKey)

	btcKey, err := deriveKey(d.seed, CoinTypeBitcoin, index)
	if err != nil {
		return nil, fmt.Errorf("derive bitcoin key: %w", err)
	}

	version := StacksTestnetVersion
	if d.mainnet {
		version = StacksMainnetVersion
	}
	return &Account{
		Index:          index,
		StacksAddress:  StacksAddress(version, hash160(stxPub)),
		BitcoinAddress: base58.CheckEncode(hash160(compressedPubKey(btcKey)), BitcoinMainnetVersion),
		DerivationPath: fmt.Sprintf("m/44'/%d'/0'/0/%d", CoinTypeStacks, index),
		PublicKey:      hex.EncodeToString(stxPub),
	}, nil
}

// deriveKey derives the child private key at m/44'/{coinType}'/0'/0/{index}.
func deriveKey(seed []byte, coinType uint32, index uint32) ([]byte, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + coinType,
		bip32.FirstHardenedChild + 0,
		0,
		index,
	}
	key := masterKey
	for _, child := range path {
		key, err = key.NewChildKey(child)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", child, err)
		}
	}
	return key.Key, nil
}

func compressedPubKey(privKeyBytes []byte) []byte {
	_, pubKey := btcec.PrivKeyFromBytes(privKeyBytes)
	return pubKey.SerializeCompressed()
}

func hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}

func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}
