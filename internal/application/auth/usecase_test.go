package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repo de usuarios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memUserRepo struct{ users map[string]*entity.User }

func (r *memUserRepo) GetByID(id string) (*entity.User, error) { return r.users[id], nil }

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetAccessibleBranches(string) ([]string, error) { return nil, nil }

const testSecret = "secreto-auth-tests"

func newAuthEnv(t *testing.T) (*auth.AuthUseCase, *memUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave-correcta"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &memUserRepo{users: map[string]*entity.User{
		"user-1": {
			ID:           "user-1",
			Email:        "gerente@traslados.co",
			PasswordHash: string(hash),
			Role:         entity.RoleGerenteSucursal,
			Status:       "active",
		},
		"user-2": {
			ID:           "user-2",
			Email:        "suspendido@traslados.co",
			PasswordHash: string(hash),
			Role:         entity.RoleGerenteSucursal,
			Status:       "suspended",
		},
	}}
	uc := auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "traslados-api-test",
	})
	return uc, repo
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	uc, _ := newAuthEnv(t)

	resp, err := uc.Login(dto.LoginRequest{Email: "gerente@traslados.co", Password: "clave-correcta"})
	require.NoError(t, err)

	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "gerente_sucursal", resp.User.Role)

	// El token debe portar userID y rol
	userID, role, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "gerente_sucursal", role)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	uc, _ := newAuthEnv(t)

	_, err := uc.Login(dto.LoginRequest{Email: "gerente@traslados.co", Password: "clave-mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _ := newAuthEnv(t)

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@traslados.co", Password: "clave-correcta"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioSuspendido(t *testing.T) {
	uc, _ := newAuthEnv(t)

	_, err := uc.Login(dto.LoginRequest{Email: "suspendido@traslados.co", Password: "clave-correcta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized,
		"usuario no activo no debe poder iniciar sesión aunque la clave sea correcta")
}
