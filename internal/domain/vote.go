package domain

import (
	"fmt"
	"time"
)

// MetadataKind selects between the two votable association types.
type MetadataKind string

const (
	MetadataTag       MetadataKind = "tag"
	MetadataSpecialty MetadataKind = "specialty"
)

// ParseMetadataKind accepts "tag" and "specialty".
func ParseMetadataKind(raw string) (MetadataKind, error) {
	switch MetadataKind(raw) {
	case MetadataTag, MetadataSpecialty:
		return MetadataKind(raw), nil
	}
	return "", fmt.Errorf("%w: unknown metadata type %q", ErrModelValidation, raw)
}

// Vote is one user's stored endorsement of a question/metadata pair.
type Vote struct {
	ID         int64        `json:"id"`
	Kind       MetadataKind `json:"kind"`
	UserID     int64        `json:"userId"`
	QuestionID int64        `json:"questionId"`
	MetadataID int64        `json:"metadataId"`
	Value      int          `json:"value"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// VoteOp is a vote write: either SetVote or ClearVote.
type VoteOp interface {
	voteOp()
}

// SetVote stores Value for the caller, replacing any previous vote.
type SetVote struct {
	Value int
}

// ClearVote removes the caller's vote row.
type ClearVote struct{}

func (SetVote) voteOp()   {}
func (ClearVote) voteOp() {}

// ValidateVoteOp rejects values outside -1..1.
func ValidateVoteOp(op VoteOp) error {
	switch op := op.(type) {
	case SetVote:
		if op.Value < -1 || op.Value > 1 {
			return fmt.Errorf("%w: vote must be -1, 0 or 1", ErrModelValidation)
		}
		return nil
	case ClearVote:
		return nil
	default:
		return fmt.Errorf("%w: missing vote", ErrModelValidation)
	}
}

// IsActive is the activation rule: an association stays attached while its
// summed votes are greater than -1.
func IsActive(sum int) bool {
	return sum > -1
}

// Tally sums vote values per metadata id.
func Tally(votes []Vote) map[int64]int {
	sums := make(map[int64]int, len(votes))
	for _, v := range votes {
		sums[v.MetadataID] += v.Value
	}
	return sums
}
