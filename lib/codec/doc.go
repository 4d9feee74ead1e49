// Copyright 2026 The Dynamic Dev Container Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides dcc's standard CBOR encoding configuration.
//
// dcc keeps its generated documents in their native text formats
// (TOML, JSONC) and uses CBOR only for its own binary state: snapshot
// archives and the version-listing cache. This package provides the
// shared encoding and decoding modes so both encode identically. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which keeps snapshot
// files stable and diffable by hash.
//
// For buffer-oriented operations (state files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream variants exist for completeness:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
