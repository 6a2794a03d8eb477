package memory

import (
	"context"
	"sort"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"
)

type userRow struct {
	user model.User
}

type UserRepository struct {
	store *Store
	byID  map[int]*userRow
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.byID {
		if row.user.Phone == user.Phone {
			return nil, apperrors.ErrDuplicatePhone
		}
	}

	created := *user
	created.ID = r.store.nextUserID
	r.store.nextUserID++
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now()
	}
	r.byID[created.ID] = &userRow{user: created}

	out := created
	return &out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]*model.User, 0, len(r.byID))
	for _, row := range r.byID {
		u := row.user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := row.user
	return &u, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.byID {
		if row.user.Phone == phone {
			u := row.user
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.byID {
		if row.user.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}
