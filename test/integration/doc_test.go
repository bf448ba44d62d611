// Package integration_test provides end-to-end integration tests for cqltask.
//
// These tests run real statements against a single Cassandra node.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// They require Docker: testcontainers starts one Cassandra container that
// is shared by every test in the package. Set SKIP_INTEGRATION_TESTS=1 to
// skip container setup entirely.
package integration_test
