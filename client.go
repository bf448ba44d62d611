package cqltask

import "github.com/arloliu/cqltask/types"

// Type aliases for convenience - re-export from types package.
type (
	Input            = types.Input
	Result           = types.Result
	Row              = types.Row
	Credentials      = types.Credentials
	Consistency      = types.Consistency
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	TaskError        = types.TaskError
)

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Re-export TaskError operations for convenience.
const (
	OpConnect = types.OpConnect
	OpExecute = types.OpExecute
)
