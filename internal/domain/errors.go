package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/webuildworld/webuild/internal/domain/models"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidBrick is returned when brick input fails validation
	ErrInvalidBrick = errors.New("invalid brick")

	// ErrNotLinked is returned when the main contract has no provider
	ErrNotLinked = errors.New("main contract is not linked to an implementation")

	// ErrUnknownAccount is returned when a named account is not configured
	ErrUnknownAccount = errors.New("unknown account")

	// ErrContractNotDeployed is returned when no deployment exists for a contract on the current chain
	ErrContractNotDeployed = errors.New("contract not deployed")

	// ErrNotOwner is returned when a sender acts on a brick it does not own
	ErrNotOwner = errors.New("not the brick owner")

	// ErrBrickState is returned when a brick cannot make the requested transition
	ErrBrickState = errors.New("invalid brick state")

	// ErrUnsupported is returned when the selected network cannot serve an operation
	ErrUnsupported = errors.New("unsupported on this network")
)

// NoDeploymentMatchErr is returned when a deployment reference resolves to nothing.
type NoDeploymentMatchErr struct {
	Ref     string
	ChainID uint64
}

func (e NoDeploymentMatchErr) Error() string {
	return fmt.Sprintf("no deployment matches %q on chain %d", e.Ref, e.ChainID)
}

func (e NoDeploymentMatchErr) Unwrap() error {
	return ErrNotFound
}

// AmbiguousDeploymentErr is returned when a reference matches more than one deployment.
type AmbiguousDeploymentErr struct {
	Ref     string
	Matches []*models.Deployment
}

func (e AmbiguousDeploymentErr) Error() string {
	sorted := make([]*models.Deployment, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	var suggestions []string
	for _, d := range sorted {
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%s)", d.GetShortID(), d.Address))
	}

	return fmt.Sprintf("multiple deployments match %q - use name:label or an address to disambiguate:\n%s",
		e.Ref, strings.Join(suggestions, "\n"))
}

// TransactionFailedError is returned when a transaction was mined with a failed status.
type TransactionFailedError struct {
	Hash   string
	Method string
	Reason string
}

func (e *TransactionFailedError) Error() string {
	msg := fmt.Sprintf("transaction %s (%s) failed", e.Hash, e.Method)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ValidationError describes a single invalid field of user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidBrick
}

// RevertedError is returned when a contract call or gas estimation reverts
type RevertedError struct {
	Method string
	Reason string
}

func (e *RevertedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s reverted", e.Method)
	}
	return fmt.Sprintf("%s reverted: %s", e.Method, e.Reason)
}
