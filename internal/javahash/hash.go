// Package javahash reproduces the JVM hash functions the official Maven and
// Gradle wrappers use to name their distribution cache directories.
package javahash

import (
	"crypto/md5"
	"math/big"
	"strconv"
	"strings"
)

// StringHash mirrors java.lang.String#hashCode for ASCII input: h = 31*h + b,
// wrapping at 32 bits.
func StringHash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	return h
}

// HashIgnoringCase continues h with the ASCII-lowercased characters of s.
func HashIgnoringCase(h int32, s string) int32 {
	for _, r := range s {
		h = h*31 + int32(toLower(r))
	}
	return h
}

// combine folds s into h the way java.net.URI does for its components.
func combine(h int32, s string) int32 {
	if strings.ContainsRune(s, '%') {
		return normalizedHash(h, s)
	}
	return h*127 + StringHash(s)
}

// normalizedHash hashes s with the two characters after each '%' upper-cased,
// so escapes differing only in hex-digit case collide.
func normalizedHash(h int32, s string) int32 {
	var n int32
	up := 0
	for _, r := range s {
		if up > 0 {
			up--
			r = toUpper(r)
		}
		n = n*31 + int32(r)
		if r == '%' {
			up = 2
		}
	}
	return h*127 + n
}

// HexHash renders h as the JVM's Integer.toHexString does.
func HexHash(h int32) string {
	return strconv.FormatUint(uint64(uint32(h)), 16)
}

// ArchiveHash is the Gradle wrapper's PathAssembler hash: MD5 of the URL read
// as an unsigned big-endian integer, printed in base 36.
func ArchiveHash(s string) string {
	sum := md5.Sum([]byte(s))
	return new(big.Int).SetBytes(sum[:]).Text(36)
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
