package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
)

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (s *stubUserRepo) add(user *models.User) *models.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if dto.Name != nil {
		user.Name = *dto.Name
	}
	if dto.Email != nil {
		user.Email = *dto.Email
	}
	if dto.Payment != nil {
		user.Payment = *dto.Payment
	}
	if dto.Phone != nil {
		user.Phone = dto.Phone
	}
	if dto.Address != nil {
		user.Address = dto.Address
	}
	return user, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.users, id)
	return nil
}

func (s *stubUserRepo) ListAllWithOrders(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func TestServiceGetReturnsSafeDTO(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "secret", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", dto.Email)
}

func TestServiceGetUnknownUser(t *testing.T) {
	svc, err := NewService(newStubUserRepo())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestServiceUpdateOwnProfile(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	name := "Ana Maria"
	dto, err := svc.Update(context.Background(), user.ID, enums.RoleCustomer, user.ID, UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", dto.Name)
}

func TestServiceUpdateForeignProfileForbidden(t *testing.T) {
	repo := newStubUserRepo()
	target := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	name := "Hacked"
	_, err = svc.Update(context.Background(), uuid.New(), enums.RoleCustomer, target.ID, UpdateUserRequest{Name: &name})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
	assert.Equal(t, "Ana", target.Name)
}

func TestServiceVendorManagesAnyProfile(t *testing.T) {
	repo := newStubUserRepo()
	target := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	name := "Renamed"
	dto, err := svc.Update(context.Background(), uuid.New(), enums.RoleVendor, target.ID, UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", dto.Name)
}

func TestServiceUpdateRejectsTakenEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Name: "Bob", Email: "bob@example.com", Role: enums.RoleCustomer})
	user := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	email := "bob@example.com"
	_, err = svc.Update(context.Background(), user.ID, enums.RoleCustomer, user.ID, UpdateUserRequest{Email: &email})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestServiceDelete(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(&models.User{Name: "Ana", Email: "ana@example.com", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), user.ID, enums.RoleCustomer, user.ID))

	_, err = svc.Get(context.Background(), user.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestServiceListAllOmitsPasswordHash(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "secret", Role: enums.RoleCustomer})

	svc, err := NewService(repo)
	require.NoError(t, err)

	rows, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ana@example.com", rows[0].Email)
	assert.NotNil(t, rows[0].Orders)
}
