package wallet

import (
	"math/big"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// StacksAddress encodes a hash160 as a c32check Stacks address.
func StacksAddress(version byte, hash []byte) string {
	data := make([]byte, 0, 1+len(hash))
	data = append(data, version)
	data = append(data, hash...)
	checksum := doubleSHA256(data)[:4]

	payload := make([]byte, 0, len(hash)+4)
	payload = append(payload, hash...)
	payload = append(payload, checksum...)
	return "S" + string(c32Alphabet[version&31]) + c32Encode(payload)
}

func c32Encode(data []byte) string {
	var out []byte
	n := new(big.Int).SetBytes(data)
	base := big.NewInt(32)
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		out = append(out, c32Alphabet[mod.Int64()])
	}
	for _, b := range data {
		if b != 0 {
			break
		}
		out = append(out, '0')
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
