package domain

import (
	"time"

	"github.com/google/uuid"
)

type NodeKind string

const (
	NodeClaim    NodeKind = "claim"
	NodeArgument NodeKind = "argument"
	NodeEvidence NodeKind = "evidence"
)

func ValidNodeKind(k string) bool {
	switch NodeKind(k) {
	case NodeClaim, NodeArgument, NodeEvidence:
		return true
	}
	return false
}

type ArgumentType string

const (
	ArgumentTruth     ArgumentType = "truth"
	ArgumentRelevance ArgumentType = "relevance"
)

func ValidArgumentType(t string) bool {
	switch ArgumentType(t) {
	case ArgumentTruth, ArgumentRelevance:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "verified"
	VerificationFalsified  VerificationStatus = "falsified"
	VerificationDisputed   VerificationStatus = "disputed"
	VerificationUnverified VerificationStatus = "unverified"
)

func ValidVerificationStatus(s string) bool {
	switch VerificationStatus(s) {
	case VerificationVerified, VerificationFalsified, VerificationDisputed, VerificationUnverified:
		return true
	}
	return false
}

// StatusWeight maps a verification status to the weight it carries when an
// argument averages its linked evidence.
var StatusWeight = map[VerificationStatus]float64{
	VerificationVerified:   1.0,
	VerificationDisputed:   0.5,
	VerificationUnverified: 0.5,
	VerificationFalsified:  0.0,
}

const DefaultBaseImpact = 1.0

// Node is the closed variant over claims, arguments and evidence. Kind is
// matched exhaustively wherever scores are computed; fields past CreatedAt
// only apply to the kinds noted. Computed scores never live on the node;
// the propagation engine owns them (see ScoreBreakdown).
type Node struct {
	ID        uuid.UUID `json:"id"`
	Kind      NodeKind  `json:"kind"`
	Statement string    `json:"statement"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Argument only
	ArgumentType ArgumentType `json:"argument_type,omitempty"`
	BaseImpact   float64      `json:"base_impact,omitempty"`

	// Evidence only
	SourceURL    string             `json:"source_url,omitempty"`
	Verification VerificationStatus `json:"verification_status,omitempty"`
}
