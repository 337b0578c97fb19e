// Package ciphers defines the keyless round functions studied with the spn models: AES, Ascon, Boomslang,
// CRAFT, GIFT, Keccak-f, LED, Mantis, Midori64, PRINCE, RECTANGLE, Scream, SKINNY, and Streebog.
//
// Round constants and key additions are left out. Each constructor validates its data and returns the model;
// Lookup gives access to every cipher by name.
package ciphers

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/baudrin-j/commutative-cryptanalysis-made-practical/spn"
)

// ErrUnknownCipher is returned by Lookup for names missing from the registry.
var ErrUnknownCipher = errors.New("ciphers: unknown cipher")

func aesLike(f func() (*spn.AESLike, error)) func() (spn.SPN, error) {
	return func() (spn.SPN, error) {
		c, err := f()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func cipher(f func() (*spn.Cipher, error)) func() (spn.SPN, error) {
	return func() (spn.SPN, error) {
		c, err := f()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// registry maps cipher names to constructors. Scream is missing since its S-box is a parameter.
//
//nolint:gochecknoglobals // static registry
var registry = map[string]func() (spn.SPN, error){
	"AES":         aesLike(AES),
	"Ascon":       cipher(Ascon),
	"Boomslang":   aesLike(Boomslang),
	"Craft":       aesLike(Craft),
	"GIFT-64":     aesLike(func() (*spn.AESLike, error) { return Gift(64) }),
	"GIFT-128":    aesLike(func() (*spn.AESLike, error) { return Gift(128) }),
	"LED":         aesLike(LED),
	"Mantis":      aesLike(Mantis),
	"Midori64":    aesLike(Midori),
	"Prince":      aesLike(func() (*spn.AESLike, error) { return Prince(true) }),
	"Prince (M1)": aesLike(func() (*spn.AESLike, error) { return Prince(false) }),
	"RECTANGLE":   cipher(Rectangle),
	"SKINNY-64":   aesLike(func() (*spn.AESLike, error) { return Skinny(64) }),
	"SKINNY-128":  aesLike(func() (*spn.AESLike, error) { return Skinny(128) }),
	"Streebog":    aesLike(Streebog),
}

//nolint:gochecknoinits // registry entries derived from KeccakWidths
func init() {
	for _, b := range KeccakWidths {
		registry[fmt.Sprintf("Keccak[%d]", b)] = cipher(func() (*spn.Cipher, error) { return Keccak(b) })
	}
}

// Lookup builds the cipher with the given name.
func Lookup(name string) (spn.SPN, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
	}
	return f()
}

// Names returns the registered cipher names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}
