package access

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == models.RoleAdmin
}

// RequireUser fails closed on an anonymous principal.
func (p Principal) RequireUser() error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func (p Principal) RequireAdmin() error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrAdmin allows the owner of a resource or any admin.
func (p Principal) RequireOwnerOrAdmin(ownerID uuid.UUID) error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if p.IsAdmin() || p.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}

// LocalsKey holds a Principal whose role was confirmed against storage.
const LocalsKey = "principal"

// FromCtx returns the Principal stored by the admin gate, or builds it from
// the JWT stored in Fiber locals by the auth middleware.
func FromCtx(c *fiber.Ctx) (Principal, error) {
	if p, ok := c.Locals(LocalsKey).(Principal); ok && p.Authenticated() {
		return p, nil
	}
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Principal{}, ErrUnauthenticated
	}
	return FromClaims(token.Claims)
}

func FromClaims(claims jwt.Claims) (Principal, error) {
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return Principal{}, ErrUnauthenticated
	}

	role, _ := mc["role"].(string)
	if role != string(models.RoleAdmin) {
		role = string(models.RoleUser)
	}

	return Principal{UserID: userID, Role: models.Role(role)}, nil
}
