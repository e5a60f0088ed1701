package ledger

import (
	"context"
	"errors"
	"time"

	"foodgram/internal/repository"

	"go.uber.org/zap"
)

// Kind names one of the user -> target relations.
type Kind string

const (
	KindFollow   Kind = "follow"
	KindFavorite Kind = "favorite"
	KindBasket   Kind = "basket"
)

// Relation is a stored (user, target) mark.
type Relation struct {
	ID        int64
	Kind      Kind
	UserID    int64
	TargetID  int64
	CreatedAt time.Time
}

type Service struct {
	markers map[Kind]Marker
	follows FollowReader
	users   UserReader
	recipes RecipeReader
	log     *zap.SugaredLogger
}

func NewService(follows interface {
	Marker
	FollowReader
}, favorites, basket Marker, users UserReader, recipes RecipeReader, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		markers: map[Kind]Marker{
			KindFollow:   follows,
			KindFavorite: favorites,
			KindBasket:   basket,
		},
		follows: follows,
		users:   users,
		recipes: recipes,
		log:     log,
	}
}

// Mark stores the relation. The target must exist, a user cannot follow
// themselves and a pair can be marked only once.
func (s *Service) Mark(ctx context.Context, kind Kind, userID, targetID int64) (*Relation, error) {
	m, err := s.prepare(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if kind == KindFollow && userID == targetID {
		return nil, ErrSelfFollow
	}

	entry, err := m.Mark(ctx, userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRelationExists):
			return nil, ErrDuplicate
		case errors.Is(err, repository.ErrMissingReference):
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	s.log.Debugw("relation marked", "kind", kind, "user_id", userID, "target_id", targetID, "id", entry.ID)
	return &Relation{
		ID:        entry.ID,
		Kind:      kind,
		UserID:    entry.UserID,
		TargetID:  entry.TargetID,
		CreatedAt: entry.CreatedAt,
	}, nil
}

func (s *Service) Unmark(ctx context.Context, kind Kind, userID, targetID int64) error {
	m, err := s.prepare(ctx, kind, targetID)
	if err != nil {
		return err
	}
	if err := m.Unmark(ctx, userID, targetID); err != nil {
		if errors.Is(err, repository.ErrRelationNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Debugw("relation removed", "kind", kind, "user_id", userID, "target_id", targetID)
	return nil
}

func (s *Service) prepare(ctx context.Context, kind Kind, targetID int64) (Marker, error) {
	m, ok := s.markers[kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	var (
		exists bool
		err    error
	)
	if kind == KindFollow {
		exists, err = s.users.Exists(ctx, targetID)
	} else {
		exists, err = s.recipes.Exists(ctx, targetID)
	}
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTargetNotFound
	}
	return m, nil
}
