package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
)

// callerID parses the caller's user id. A nil caller or a malformed id is
// treated as unauthenticated.
func callerID(caller *auth.Identity) (uuid.UUID, error) {
	if caller == nil {
		return uuid.Nil, apperr.ErrAuthRequired
	}
	id, err := uuid.Parse(caller.ID)
	if err != nil {
		return uuid.Nil, apperr.ErrAuthRequired
	}
	return id, nil
}

// notFound turns gorm.ErrRecordNotFound into the given domain error and
// passes other errors through.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperr.Validation("invalid id: "+s, "INVALID_ID")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
