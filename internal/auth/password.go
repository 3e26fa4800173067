// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing, request identities and the
// registration and login flows built on top of the store.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. The encoded form is "pbkdf2:sha256:<iterations>$<salt>$<hex>",
// the same layout Werkzeug writes, so existing hashes keep verifying.
const (
	DefaultIterations = 600000
	SaltLength        = 8
	KeyLength         = 32

	// legacyIterations applies to hashes written without an explicit count.
	legacyIterations = 150000

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	method    = "pbkdf2:sha256"
)

// HashPassword hashes password with the default iteration count.
func HashPassword(password string) (string, error) {
	return HashPasswordWithIterations(password, DefaultIterations)
}

// HashPasswordWithIterations hashes password with a fresh salt and the given cost.
func HashPasswordWithIterations(password string, iterations int) (string, error) {
	if iterations <= 0 {
		return "", fmt.Errorf("invalid iteration count %d", iterations)
	}

	salt, err := generateSalt(SaltLength)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, KeyLength, sha256.New)
	return fmt.Sprintf("%s:%d$%s$%s", method, iterations, salt, hex.EncodeToString(key)), nil
}

// CheckPassword verifies password against an encoded hash in constant time.
func CheckPassword(password, encodedHash string) (bool, error) {
	params, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}

	expected, err := hex.DecodeString(params.hash)
	if err != nil {
		return false, fmt.Errorf("decoding hash: %w", err)
	}

	key := pbkdf2.Key([]byte(password), []byte(params.salt), params.iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// NeedsRehash reports whether encodedHash was produced with parameters other
// than the wanted iteration count.
func NeedsRehash(encodedHash string, iterations int) bool {
	params, err := parseHash(encodedHash)
	if err != nil {
		return true
	}
	return params.iterations != iterations
}

type hashParams struct {
	iterations int
	salt       string
	hash       string
}

func parseHash(encodedHash string) (hashParams, error) {
	parts := strings.SplitN(encodedHash, "$", 3)
	if len(parts) != 3 {
		return hashParams{}, fmt.Errorf("invalid hash format")
	}

	methodParts := strings.Split(parts[0], ":")
	if len(methodParts) < 2 || methodParts[0] != "pbkdf2" {
		return hashParams{}, fmt.Errorf("unsupported hash method: %s", parts[0])
	}
	if methodParts[1] != "sha256" {
		return hashParams{}, fmt.Errorf("unsupported digest: %s", methodParts[1])
	}

	iterations := legacyIterations
	if len(methodParts) == 3 {
		n, err := strconv.Atoi(methodParts[2])
		if err != nil || n <= 0 {
			return hashParams{}, fmt.Errorf("invalid iteration count %q", methodParts[2])
		}
		iterations = n
	}

	return hashParams{iterations: iterations, salt: parts[1], hash: parts[2]}, nil
}

func generateSalt(n int) (string, error) {
	limit := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
