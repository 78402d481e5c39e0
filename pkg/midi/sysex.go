// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

package midi

// EncodeSysEx packs arbitrary 8-bit data into a 7-bit clean byte stream
// suitable for a SysEx payload. Each group of up to 7 input bytes is
// emitted as a header byte carrying the stripped high bits followed by
// the 7-bit remainders. With flipHeaderBits set, bit 0 of the header
// maps to the last byte of the group instead of the first (the korg
// convention).
func EncodeSysEx(data []byte, flipHeaderBits bool) []byte {
	out := make([]byte, 0, len(data)+(len(data)+6)/7)

	var msbs byte
	var group [7]byte
	count := 0

	flush := func() {
		if count == 0 {
			return
		}
		out = append(out, msbs)
		out = append(out, group[:count]...)
		msbs = 0
		count = 0
	}

	for i, b := range data {
		pos := i % 7
		if b&0x80 != 0 {
			if flipHeaderBits {
				msbs |= 1 << (6 - pos)
			} else {
				msbs |= 1 << pos
			}
		}
		group[pos] = b & 0x7F
		count++
		if pos == 6 {
			flush()
		}
	}
	flush()

	return out
}

// DecodeSysEx reverses EncodeSysEx, restoring the original 8-bit data
// from a 7-bit encoded payload.
func DecodeSysEx(encoded []byte, flipHeaderBits bool) []byte {
	out := make([]byte, 0, len(encoded))

	for i := 0; i < len(encoded); i += 8 {
		msbs := encoded[i]
		end := i + 8
		if end > len(encoded) {
			end = len(encoded)
		}
		for j, b := range encoded[i+1 : end] {
			var high byte
			if flipHeaderBits {
				high = msbs >> (6 - j) & 1
			} else {
				high = msbs >> j & 1
			}
			out = append(out, b|high<<7)
		}
	}

	return out
}
