package sbox

// 4-bit S-boxes of lightweight ciphers, and the 8-bit GOST R 34.11-2012 π substitution.
//
//nolint:gochecknoglobals // constant tables
var (
	midoriSb0 = []int{0xc, 0xa, 0xd, 0x3, 0xe, 0xb, 0xf, 0x7, 0x8, 0x9, 0x1, 0x5, 0x0, 0x2, 0x4, 0x6}
	gift      = []int{0x1, 0xa, 0x4, 0xc, 0x6, 0xf, 0x3, 0x9, 0x2, 0xd, 0xb, 0x7, 0x5, 0x0, 0x8, 0xe}
	present   = []int{0xc, 0x5, 0x6, 0xb, 0x9, 0x0, 0xa, 0xd, 0x3, 0xe, 0xf, 0x8, 0x4, 0x7, 0x1, 0x2}
	prince    = []int{0xb, 0xf, 0x3, 0x2, 0xa, 0xc, 0x9, 0x1, 0x6, 0x7, 0x8, 0x0, 0xe, 0x5, 0xd, 0x4}
	rectangle = []int{0x6, 0x5, 0xc, 0xa, 0x1, 0xe, 0x7, 0x9, 0xb, 0x0, 0x3, 0xd, 0x8, 0xf, 0x4, 0x2}
	skinny4   = []int{0xc, 0x6, 0x9, 0x0, 0x1, 0xa, 0x2, 0xb, 0x3, 0x8, 0x5, 0xd, 0x4, 0xe, 0x7, 0xf}

	streebogPi = []int{
		0xfc, 0xee, 0xdd, 0x11, 0xcf, 0x6e, 0x31, 0x16, 0xfb, 0xc4, 0xfa, 0xda, 0x23, 0xc5, 0x04, 0x4d,
		0xe9, 0x77, 0xf0, 0xdb, 0x93, 0x2e, 0x99, 0xba, 0x17, 0x36, 0xf1, 0xbb, 0x14, 0xcd, 0x5f, 0xc1,
		0xf9, 0x18, 0x65, 0x5a, 0xe2, 0x5c, 0xef, 0x21, 0x81, 0x1c, 0x3c, 0x42, 0x8b, 0x01, 0x8e, 0x4f,
		0x05, 0x84, 0x02, 0xae, 0xe3, 0x6a, 0x8f, 0xa0, 0x06, 0x0b, 0xed, 0x98, 0x7f, 0xd4, 0xd3, 0x1f,
		0xeb, 0x34, 0x2c, 0x51, 0xea, 0xc8, 0x48, 0xab, 0xf2, 0x2a, 0x68, 0xa2, 0xfd, 0x3a, 0xce, 0xcc,
		0xb5, 0x70, 0x0e, 0x56, 0x08, 0x0c, 0x76, 0x12, 0xbf, 0x72, 0x13, 0x47, 0x9c, 0xb7, 0x5d, 0x87,
		0x15, 0xa1, 0x96, 0x29, 0x10, 0x7b, 0x9a, 0xc7, 0xf3, 0x91, 0x78, 0x6f, 0x9d, 0x9e, 0xb2, 0xb1,
		0x32, 0x75, 0x19, 0x3d, 0xff, 0x35, 0x8a, 0x7e, 0x6d, 0x54, 0xc6, 0x80, 0xc3, 0xbd, 0x0d, 0x57,
		0xdf, 0xf5, 0x24, 0xa9, 0x3e, 0xa8, 0x43, 0xc9, 0xd7, 0x79, 0xd6, 0xf6, 0x7c, 0x22, 0xb9, 0x03,
		0xe0, 0x0f, 0xec, 0xde, 0x7a, 0x94, 0xb0, 0xbc, 0xdc, 0xe8, 0x28, 0x50, 0x4e, 0x33, 0x0a, 0x4a,
		0xa7, 0x97, 0x60, 0x73, 0x1e, 0x00, 0x62, 0x44, 0x1a, 0xb8, 0x38, 0x82, 0x64, 0x9f, 0x26, 0x41,
		0xad, 0x45, 0x46, 0x92, 0x27, 0x5e, 0x55, 0x2f, 0x8c, 0xa3, 0xa5, 0x7d, 0x69, 0xd5, 0x95, 0x3b,
		0x07, 0x58, 0xb3, 0x40, 0x86, 0xac, 0x1d, 0xf7, 0x30, 0x37, 0x6b, 0xe4, 0x88, 0xd9, 0xe7, 0x89,
		0xe1, 0x1b, 0x83, 0x49, 0x4c, 0x3f, 0xf8, 0xfe, 0x8d, 0x53, 0xaa, 0x90, 0xca, 0xd8, 0x85, 0x61,
		0x20, 0x71, 0x67, 0xa4, 0x2d, 0x2b, 0x09, 0x5b, 0xcb, 0x9b, 0x25, 0xd0, 0xbe, 0xe5, 0x6c, 0x52,
		0x59, 0xa6, 0x74, 0xd2, 0xe6, 0xf4, 0xb4, 0xc0, 0xd1, 0x66, 0xaf, 0xc2, 0x39, 0x4b, 0x63, 0xb6,
	}
)

// Midori0 returns Sb0, the 4-bit S-box of Midori64 and Mantis.
func Midori0() SBox { return MustNew(midoriSb0...) }

// Craft returns the CRAFT S-box, which is Midori's Sb0.
func Craft() SBox { return MustNew(midoriSb0...) }

// GIFT returns the GIFT S-box.
func GIFT() SBox { return MustNew(gift...) }

// PRESENT returns the PRESENT S-box, also used by LED.
func PRESENT() SBox { return MustNew(present...) }

// PRINCE returns the PRINCE S-box.
func PRINCE() SBox { return MustNew(prince...) }

// Rectangle returns the RECTANGLE S-box.
func Rectangle() SBox { return MustNew(rectangle...) }

// Skinny4 returns the 4-bit SKINNY S-box.
func Skinny4() SBox { return MustNew(skinny4...) }

// Streebog returns π, the S-box shared by Streebog and Kuznyechik.
func Streebog() SBox { return MustNew(streebogPi...) }

// Skinny8 returns the 8-bit SKINNY S-box, tabulated from its NOR-XOR circuit.
func Skinny8() SBox {
	t := make([]int, 256)
	for x := range t {
		t[x] = int(skinny8(uint8(x)))
	}
	return MustNew(t...)
}

func skinny8(x uint8) uint8 {
	x = ^x
	x ^= ((x >> 2) & (x >> 3)) & 0x11
	y := ((x << 5) & (x << 1)) & 0x20
	x ^= (((x << 5) & (x << 4)) & 0x40) ^ y
	y = ((x << 2) & (x << 1)) & 0x80
	x ^= (((x >> 2) & (x << 1)) & 0x02) ^ y
	y = ((x >> 5) & (x << 1)) & 0x04
	x ^= (((x >> 1) & (x >> 2)) & 0x08) ^ y
	x = ^x
	return ((x & 0x08) << 1) | ((x & 0x32) << 2) | ((x & 0x01) << 5) | ((x & 0x80) >> 6) | ((x & 0x40) >> 4) | ((x & 0x04) >> 2)
}
