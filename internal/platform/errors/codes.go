// Package errors provides structured match-engine errors with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Board errors
	CodeCellOutOfBounds     Code = "CELL_OUT_OF_BOUNDS"
	CodeCellAlreadyTargeted Code = "CELL_ALREADY_TARGETED"
	CodeShipInvalid         Code = "SHIP_INVALID"

	// Match errors
	CodeMatchInvalidPhase    Code = "MATCH_INVALID_PHASE"
	CodeMatchPlacementClosed Code = "MATCH_PLACEMENT_CLOSED"
	CodeMatchSamePlayerTwice Code = "MATCH_SAME_PLAYER_TWICE"
	CodeNotAttacker          Code = "NOT_ATTACKER"

	// Player errors
	CodePlayerIDEmpty        Code = "PLAYER_ID_EMPTY"
	CodePlayerNotInMatch     Code = "PLAYER_NOT_IN_MATCH"
	CodePlayerAlreadyPlaying Code = "PLAYER_ALREADY_PLAYING"

	// Transport errors
	CodeDeliveryFailed Code = "DELIVERY_FAILED"
	CodeCommandInvalid Code = "COMMAND_INVALID"
	CodeTokenInvalid   Code = "TOKEN_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - caller supplied something that can never be valid
	case CodeCellOutOfBounds,
		CodeShipInvalid,
		CodePlayerIDEmpty,
		CodeMatchSamePlayerTwice,
		CodeCommandInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCellAlreadyTargeted,
		CodeMatchInvalidPhase,
		CodeMatchPlacementClosed,
		CodeNotAttacker:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodePlayerNotInMatch:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodePlayerAlreadyPlaying:
		return codes.AlreadyExists

	case CodeDeliveryFailed:
		return codes.Unavailable

	case CodeTokenInvalid:
		return codes.Unauthenticated

	default:
		return codes.Internal
	}
}
