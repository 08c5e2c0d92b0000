// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the provider project using Mage.
//
// Usage:
//
//	mage build             Compile the provider binary to bin/
//	mage install           Install provider to GOPATH/bin
//	mage test:all          Run all tests
//	mage test:unit         Run tests that need no database file
//	mage test:integration  Run the SQLite-backed and CLI tests
//	mage test:race         Run all tests with the race detector
//	mage test:cover        Write coverage.out and print per-function coverage
//	mage vet               Run go vet
//	mage lint              Run go vet, then golangci-lint
//	mage clean             Remove build artifacts
package main
