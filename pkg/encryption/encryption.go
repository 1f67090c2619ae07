// Copyright (c) 2025 A Bit of Help, Inc.

// Package encryption seals deliverables with an AES-256-GCM AEAD primitive.
//
// The keyset is kept as cleartext JSON at a caller-chosen path. It is generated on
// first use and reused afterwards, so a sealed deliverable can be opened later with
// the same keyset file. The deliverable name is bound as associated data.
package encryption

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/abitofhelp/pixelpack/pkg/dataprocessor"
	customErrors "github.com/abitofhelp/pixelpack/pkg/errors"
	"github.com/google/tink/go/aead"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/tink"
	"go.uber.org/zap"
)

// SealedSuffix is appended to the name of a sealed deliverable
const SealedSuffix = ".sealed"

// InitEncryption loads the keyset at path, creating it when it does not exist, and
// returns its AEAD primitive
func InitEncryption(logger *zap.Logger, path string) (tink.AEAD, error) {
	kh, created, err := loadOrCreate(path)
	if err != nil {
		return nil, err
	}

	a, err := aead.New(kh)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD primitive: %w", err)
	}

	logger.Info("Encryption initialized successfully",
		zap.String("keyset", path),
		zap.Bool("created", created))
	return a, nil
}

func loadOrCreate(path string) (*keyset.Handle, bool, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		kh, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(f))
		if err != nil {
			return nil, false, fmt.Errorf("failed to read keyset %s: %w", path, err)
		}
		return kh, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, fmt.Errorf("%w: failed to open keyset: %v", customErrors.ErrIOFailure, err)
	}

	kh, err := keyset.NewHandle(aead.AES256GCMKeyTemplate())
	if err != nil {
		return nil, false, fmt.Errorf("failed to create keyset handle: %w", err)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create keyset: %v", customErrors.ErrIOFailure, err)
	}
	if err := insecurecleartextkeyset.Write(kh, keyset.NewJSONWriter(out)); err != nil {
		out.Close()
		return nil, false, fmt.Errorf("failed to write keyset %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return nil, false, fmt.Errorf("%w: failed to close keyset: %v", customErrors.ErrIOFailure, err)
	}
	return kh, true, nil
}

// Seal encrypts data with context awareness, binding name as associated data
func Seal(ctx context.Context, a tink.AEAD, data []byte, name string) ([]byte, error) {
	return dataprocessor.ProcessWithContext(ctx, func() ([]byte, error) {
		return a.Encrypt(data, []byte(name))
	})
}

// Open reverses Seal. It fails when name differs from the one data was sealed with.
func Open(ctx context.Context, a tink.AEAD, sealed []byte, name string) ([]byte, error) {
	return dataprocessor.ProcessWithContext(ctx, func() ([]byte, error) {
		return a.Decrypt(sealed, []byte(name))
	})
}
