// Package types provides shared types and errors for the cqltask library.
//
// This is a "leaf" package with no imports from other cqltask packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"strings"
)

// DefaultPort is the native protocol port used when Input.Port is zero.
const DefaultPort = 9042

// Input describes a single query execution.
type Input struct {
	// ContactPoints are the initial hosts used to discover the cluster.
	// At least one non-blank entry is required.
	ContactPoints []string

	// Port is the native protocol port. Zero selects DefaultPort.
	Port int

	// Keyspace is the session keyspace. Empty means no keyspace is selected
	// and the query must use fully qualified table names.
	Keyspace string

	// Query is the CQL statement. It is sent to the driver exactly as given.
	Query string
}

// Validate checks that the input can be sent to a cluster.
//
// Returns:
//   - error: ErrNoContactPoints, ErrInvalidPort, ErrEmptyQuery, or nil if valid
func (in Input) Validate() error {
	if len(in.Hosts()) == 0 {
		return ErrNoContactPoints
	}
	if in.Port < 0 || in.Port > 65535 {
		return ErrInvalidPort
	}
	if strings.TrimSpace(in.Query) == "" {
		return ErrEmptyQuery
	}

	return nil
}

// Hosts returns the contact points with blank entries removed.
func (in Input) Hosts() []string {
	hosts := make([]string, 0, len(in.ContactPoints))
	for _, cp := range in.ContactPoints {
		if cp = strings.TrimSpace(cp); cp != "" {
			hosts = append(hosts, cp)
		}
	}

	return hosts
}

// EffectivePort returns Port, or DefaultPort when Port is zero.
func (in Input) EffectivePort() int {
	if in.Port == 0 {
		return DefaultPort
	}

	return in.Port
}

// Row is a single result row keyed by column name.
//
// Values are passed through exactly as decoded by the driver.
type Row = map[string]any

// Result is the outcome of a successful query execution.
type Result struct {
	// Success is true for every result returned without an error.
	Success bool

	// QueryResults holds the returned rows. Empty (never nil) for statements
	// that produce no rows, such as INSERT.
	QueryResults []Row

	// Warnings holds the warnings sent by the server, in arrival order.
	// Empty (never nil) when the server sent none.
	Warnings []string

	// Columns lists the result column names in metadata order.
	Columns []string

	// ExecutionID identifies this execution in logs and traces.
	ExecutionID string
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int {
	if r == nil {
		return 0
	}

	return len(r.QueryResults)
}

// Credentials holds plain-text authentication credentials handed to the driver.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no username was configured.
func (c Credentials) IsZero() bool {
	return c.Username == ""
}

// Consistency represents the Cassandra consistency level.
type Consistency uint16

// Common consistency levels matching gocql.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
	Serial      Consistency = 0x08
	LocalSerial Consistency = 0x09
	LocalOne    Consistency = 0x0A
)

var consistencyNames = map[Consistency]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
	LocalOne:    "LOCAL_ONE",
}

// String returns the CQL name of the consistency level.
func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseConsistency parses a consistency level name.
//
// Matching is case-insensitive and ignores underscores, so "local_quorum",
// "LOCAL_QUORUM" and "localquorum" are equivalent.
//
// Parameters:
//   - s: Consistency level name
//
// Returns:
//   - Consistency: The parsed level
//   - error: ErrInvalidConsistency if the name is unknown
func ParseConsistency(s string) (Consistency, error) {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "_", "")
	for c, name := range consistencyNames {
		if strings.ReplaceAll(name, "_", "") == key {
			return c, nil
		}
	}

	return 0, &InvalidConsistencyError{Value: s}
}

// Sentinel errors for invalid input and configuration.
var (
	// ErrNoContactPoints indicates that no usable contact point was given.
	ErrNoContactPoints = errors.New("cqltask: at least one contact point is required")

	// ErrInvalidPort indicates a negative port or one above 65535.
	ErrInvalidPort = errors.New("cqltask: port must be 0 (default) or 1..65535")

	// ErrEmptyQuery indicates a blank query text.
	ErrEmptyQuery = errors.New("cqltask: query cannot be empty")

	// ErrNilConnector indicates that a nil connector was configured.
	ErrNilConnector = errors.New("cqltask: connector cannot be nil")

	// ErrInvalidConsistency indicates an unknown consistency level name.
	ErrInvalidConsistency = errors.New("cqltask: invalid consistency level")
)

// InvalidConsistencyError reports the consistency name that failed to parse.
type InvalidConsistencyError struct {
	Value string
}

// Error implements the error interface.
func (e *InvalidConsistencyError) Error() string {
	return ErrInvalidConsistency.Error() + ": " + e.Value
}

// Unwrap returns ErrInvalidConsistency for errors.Is compatibility.
func (e *InvalidConsistencyError) Unwrap() error {
	return ErrInvalidConsistency
}

// Operations reported by TaskError.
const (
	OpConnect = "connect"
	OpExecute = "execute"
)

// TaskError wraps a driver error with the step that produced it.
type TaskError struct {
	// Operation is the step that failed: OpConnect or OpExecute.
	Operation string

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return "cqltask: " + e.Operation + " failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TaskError) Unwrap() error {
	return e.Cause
}
