// crc.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package tello

// The Tello uses two CRCs on the control channel: an 8-bit check over the
// first three header bytes and a 16-bit check over the whole packet.
// Both are reflected table-driven CRCs; the tables are built once at startup.

const (
	crc8Poly = 0x8c // x^8+x^5+x^4+1, reflected
	crc8Init = 0x77

	crc16Poly = 0x8408 // CCITT, reflected
	crc16Init = 0x3692
)

var (
	crc8Table  [256]byte
	crc16Table [256]uint16
)

func init() {
	for i := range crc8Table {
		c := byte(i)
		for b := 0; b < 8; b++ {
			if c&1 != 0 {
				c = (c >> 1) ^ crc8Poly
			} else {
				c >>= 1
			}
		}
		crc8Table[i] = c
	}
	for i := range crc16Table {
		c := uint16(i)
		for b := 0; b < 8; b++ {
			if c&1 != 0 {
				c = (c >> 1) ^ crc16Poly
			} else {
				c >>= 1
			}
		}
		crc16Table[i] = c
	}
}

func calculateCRC8(buff []byte) (crc byte) {
	crc = crc8Init
	for _, b := range buff {
		crc = crc8Table[crc^b]
	}
	return crc
}

func calculateCRC16(buff []byte) (crc uint16) {
	crc = crc16Init
	for _, b := range buff {
		crc = crc16Table[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}
