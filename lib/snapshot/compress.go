// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm used for a
// snapshot payload. Tags are stored in the snapshot index — changing
// them breaks existing snapshot files.
type CompressionTag uint8

const (
	// CompressionNone stores the payload uncompressed. Used when
	// compression does not pay for itself.
	CompressionNone CompressionTag = 0

	// CompressionZstd is zstd at its default level: the best ratio
	// for the text documents snapshots usually hold.
	CompressionZstd CompressionTag = 1

	// CompressionLZ4 is LZ4 block compression: the fast fallback
	// when zstd's ratio is not worth its CPU cost.
	CompressionLZ4 CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// compress probes the codecs and returns the smallest encoding of
// data with the tag that produced it: zstd when it saves at least 5%,
// else lz4 when that does, else the raw bytes. Small documents fall
// through to raw storage naturally.
func compress(data []byte) ([]byte, CompressionTag, error) {
	threshold := len(data) - len(data)/20

	compressed, err := compressZstd(data)
	if err != nil {
		return nil, 0, err
	}
	if len(compressed) < threshold {
		return compressed, CompressionZstd, nil
	}

	compressed, err = compressLZ4(data)
	if err != nil {
		return nil, 0, err
	}
	if len(compressed) < threshold {
		return compressed, CompressionLZ4, nil
	}

	return data, CompressionNone, nil
}

// decompress reverses compress. The uncompressedSize must match the
// original payload length exactly — verified, a mismatch is an error.
func decompress(payload []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(payload) != uncompressedSize {
			return nil, fmt.Errorf("raw payload: size %d does not match expected %d", len(payload), uncompressedSize)
		}
		return payload, nil

	case CompressionZstd:
		reader, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		data, err := reader.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(data) != uncompressedSize {
			return nil, fmt.Errorf("zstd payload: size %d does not match expected %d", len(data), uncompressedSize)
		}
		return data, nil

	case CompressionLZ4:
		data := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, data)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != uncompressedSize {
			return nil, fmt.Errorf("lz4 payload: size %d does not match expected %d", n, uncompressedSize)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressZstd(data []byte) ([]byte, error) {
	writer, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer writer.Close()
	return writer.EncodeAll(data, nil), nil
}

func compressLZ4(data []byte) ([]byte, error) {
	buffer := make([]byte, lz4.CompressBlockBound(len(data)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(data, buffer)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// Incompressible input.
		return data, nil
	}
	return buffer[:n], nil
}
