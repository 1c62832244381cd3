// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"fmt"
	"strings"
)

// Bech32 (BIP-173) with the 90-character length limit lifted, since
// NIP-19/NIP-49 payloads exceed it. Only the pieces the key formats
// need: encode and decode with checksum verification.

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32CharsetRev = func() map[byte]byte {
	m := make(map[byte]byte, len(bech32Charset))
	for i := 0; i < len(bech32Charset); i++ {
		m[bech32Charset[i]] = byte(i)
	}
	return m
}()

func bech32Polymod(values []byte) uint32 {
	generator := []uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&0x1f)
	}
	return out
}

func bech32CreateChecksum(hrp string, data []byte) []byte {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	polymod := bech32Polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((polymod >> uint(5*(5-i))) & 0x1f)
	}
	return checksum
}

// convertBits regroups data from fromBits-wide groups to toBits-wide
// groups. With pad, leftover bits are zero-padded into a final group;
// without, leftover bits must be zero or the input is rejected.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, b := range data {
		if uint(b)>>fromBits != 0 {
			return nil, fmt.Errorf("keys: invalid data byte %d for %d-bit group", b, fromBits)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, fmt.Errorf("keys: invalid padding in bech32 data")
	}
	return out, nil
}

// bech32Encode encodes raw bytes under the given human-readable prefix.
func bech32Encode(hrp string, data []byte) (string, error) {
	grouped, err := convertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	combined := append(grouped, bech32CreateChecksum(hrp, grouped)...)
	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range combined {
		sb.WriteByte(bech32Charset[v])
	}
	return sb.String(), nil
}

// bech32Decode decodes a bech32 string, returning the prefix and raw
// bytes. The checksum is verified; mixed-case input is rejected.
func bech32Decode(s string) (string, []byte, error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("keys: mixed-case bech32 string")
	}
	s = strings.ToLower(s)
	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+7 > len(s) {
		return "", nil, fmt.Errorf("keys: malformed bech32 string")
	}
	hrp := s[:sep]
	data := make([]byte, 0, len(s)-sep-1)
	for i := sep + 1; i < len(s); i++ {
		v, ok := bech32CharsetRev[s[i]]
		if !ok {
			return "", nil, fmt.Errorf("keys: invalid bech32 character %q", s[i])
		}
		data = append(data, v)
	}
	if bech32Polymod(append(bech32HRPExpand(hrp), data...)) != 1 {
		return "", nil, fmt.Errorf("keys: bech32 checksum mismatch")
	}
	raw, err := convertBits(data[:len(data)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, raw, nil
}
