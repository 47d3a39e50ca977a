package domain

import (
	"time"

	"github.com/google/uuid"
)

type LinkageSide string

const (
	LinkagePro LinkageSide = "pro"
	LinkageCon LinkageSide = "con"
)

func ValidLinkageSide(s string) bool {
	return LinkageSide(s) == LinkagePro || LinkageSide(s) == LinkageCon
}

// LinkageKind classifies a relevance debate for reporting. Both kinds use the
// same formula and machinery.
type LinkageKind string

const (
	LinkageEvidenceToConclusion LinkageKind = "evidence_to_conclusion"
	LinkageArgumentToConclusion LinkageKind = "argument_to_conclusion"
)

// DepthAttenuation is the geometric decay applied per nesting level of a
// linkage debate, so justification chains decay rather than compound.
const DepthAttenuation = 0.5

// LinkageArgument is one pro or con entry in the nested debate over an
// edge's relevance. ParentID, when set, points at another linkage argument
// on the same edge; Depth is the nesting level below the edge itself.
type LinkageArgument struct {
	ID        uuid.UUID   `json:"id"`
	EdgeID    uuid.UUID   `json:"edge_id"`
	ParentID  *uuid.UUID  `json:"parent_id,omitempty"`
	Side      LinkageSide `json:"side"`
	Statement string      `json:"statement"`
	Strength  float64     `json:"strength"`
	CreatedBy uuid.UUID   `json:"created_by"`
	Depth     int         `json:"depth"`
	CreatedAt time.Time   `json:"created_at"`
}
