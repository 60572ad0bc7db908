// Package auth keeps the user directory and the signed-in session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// DefaultCredential is accepted for users that never set a password.
const DefaultCredential = "password"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when another user already owns the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUserNotFound is returned when an id names no user.
	ErrUserNotFound = errors.New("user not found")
)

// SeedUsers populate an empty directory.
var SeedUsers = []models.User{
	{ID: "u-admin", Email: "admin@taskboard.local", Name: "Board Admin", Role: models.RoleAdmin},
	{ID: "u-2", Email: "alex@example.com", Name: "Alex", Role: models.RoleMember},
	{ID: "u-3", Email: "sam@example.com", Name: "Sam", Role: models.RoleMember},
}

// Directory holds every user and the current session. The durable store
// keeps users and the remembered session; the ephemeral store keeps a
// session that ends with the browser session.
type Directory struct {
	mu      sync.RWMutex
	users   []models.User
	current *models.User

	durable   storage.KV
	ephemeral storage.KV
	logger    *slog.Logger
	cost      int
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the directory logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHashCost sets the bcrypt cost used for new credentials.
func WithHashCost(cost int) Option {
	return func(d *Directory) { d.cost = cost }
}

// NewDirectory creates an empty directory over the two session slots.
func NewDirectory(durable, ephemeral storage.KV, opts ...Option) *Directory {
	d := &Directory{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load restores users and the session. Users are seeded when the stored
// list is missing, empty or malformed. The remembered session wins over the
// ephemeral one.
func (d *Directory) Load(ctx context.Context) {
	var users []models.User
	ok := false
	if d.durable != nil {
		var err error
		ok, err = storage.LoadJSON(ctx, d.durable, storage.KeyUsers, &users)
		if err != nil {
			d.logger.Warn("stored users unreadable, reseeding", slog.String("error", err.Error()))
		}
	}
	seeded := false
	if !ok || len(users) == 0 || users[0].Email == "" {
		users = append([]models.User{}, SeedUsers...)
		seeded = true
	}

	var current *models.User
	for _, kv := range []storage.KV{d.durable, d.ephemeral} {
		if kv == nil {
			continue
		}
		var u models.User
		found, err := storage.LoadJSON(ctx, kv, storage.KeySession, &u)
		if err != nil {
			d.logger.Warn("stored session unreadable", slog.String("error", err.Error()))
			continue
		}
		if found && u.Email != "" {
			current = &u
			break
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = users
	d.current = current
	if seeded {
		d.persistUsersLocked(ctx)
	}
}

// Users returns every user, credentials included.
func (d *Directory) Users() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.User{}, d.users...)
}

// User looks a user up by id.
func (d *Directory) User(id string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexLocked(id); i >= 0 {
		return d.users[i], true
	}
	return models.User{}, false
}

// Current returns the signed-in user.
func (d *Directory) Current() (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return models.User{}, false
	}
	return *d.current, true
}

// Login signs a user in by case-insensitive email. An empty password skips
// the credential check. With rememberMe the session goes to the durable slot
// and the ephemeral slot is cleared; otherwise the reverse.
func (d *Directory) Login(ctx context.Context, email, password string, rememberMe bool) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.emailIndexLocked(email, "")
	if idx < 0 {
		return models.User{}, ErrInvalidCredentials
	}
	user := d.users[idx]
	if password != "" && !CheckCredential(user, password) {
		return models.User{}, ErrInvalidCredentials
	}

	d.current = &user
	keep, drop := d.ephemeral, d.durable
	if rememberMe {
		keep, drop = d.durable, d.ephemeral
	}
	d.writeSlot(ctx, keep, user)
	d.clearSlot(ctx, drop)

	d.logger.Info("user logged in", slog.String("user", user.ID), slog.Bool("remember", rememberMe))
	return user, nil
}

// Logout ends the session and clears both slots.
func (d *Directory) Logout(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
	d.clearSlot(ctx, d.durable)
	d.clearSlot(ctx, d.ephemeral)
}

// AddUser creates a user who must change the password on first login. An
// empty password leaves the user on the default credential.
func (d *Directory) AddUser(ctx context.Context, email, name string, role models.Role, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return models.User{}, err
	}
	if password != "" {
		if err := ValidatePassword(password); err != nil {
			return models.User{}, err
		}
	}
	if role != models.RoleAdmin {
		role = models.RoleMember
	}

	user := models.User{
		ID:                 models.NewID(models.PrefixUser),
		Email:              email,
		Name:               strings.TrimSpace(name),
		Role:               role,
		MustChangePassword: true,
	}
	if password != "" {
		hash, err := d.hash(password)
		if err != nil {
			return models.User{}, err
		}
		user.Credential = hash
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.emailIndexLocked(email, "") >= 0 {
		return models.User{}, ErrEmailTaken
	}
	d.users = append(append([]models.User{}, d.users...), user)
	d.persistUsersLocked(ctx)
	d.logger.Info("user added", slog.String("user", user.ID), slog.String("role", string(role)))
	return user, nil
}

// RemoveUser deletes a user. Task references to the user are left as they are.
func (d *Directory) RemoveUser(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return false
	}
	users := append([]models.User{}, d.users[:idx]...)
	d.users = append(users, d.users[idx+1:]...)
	d.persistUsersLocked(ctx)
	return true
}

// UserUpdate lists the fields UpdateUser may change. Nil fields are kept.
type UserUpdate struct {
	Name               *string      `json:"name"`
	Email              *string      `json:"email"`
	Title              *string      `json:"title"`
	Role               *models.Role `json:"role"`
	Password           *string      `json:"password"`
	MustChangePassword *bool        `json:"must_change_password"`
}

// UpdateUser applies upd to a user. A new password is validated and hashed.
// When the user is signed in, whichever slot holds the session is rewritten.
func (d *Directory) UpdateUser(ctx context.Context, id string, upd UserUpdate) (models.User, error) {
	var hash string
	if upd.Email != nil {
		trimmed := strings.TrimSpace(*upd.Email)
		upd.Email = &trimmed
		if err := ValidateEmail(trimmed); err != nil {
			return models.User{}, err
		}
	}
	if upd.Password != nil && *upd.Password != "" {
		if err := ValidatePassword(*upd.Password); err != nil {
			return models.User{}, err
		}
		var err error
		if hash, err = d.hash(*upd.Password); err != nil {
			return models.User{}, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexLocked(id)
	if idx < 0 {
		return models.User{}, ErrUserNotFound
	}
	if upd.Email != nil && d.emailIndexLocked(*upd.Email, id) >= 0 {
		return models.User{}, ErrEmailTaken
	}

	user := d.users[idx]
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Title != nil {
		user.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Role != nil && (*upd.Role == models.RoleAdmin || *upd.Role == models.RoleMember) {
		user.Role = *upd.Role
	}
	if hash != "" {
		user.Credential = hash
		user.MustChangePassword = false
	}
	if upd.MustChangePassword != nil {
		user.MustChangePassword = *upd.MustChangePassword
	}

	users := append([]models.User{}, d.users...)
	users[idx] = user
	d.users = users
	d.persistUsersLocked(ctx)

	if d.current != nil && d.current.ID == id {
		d.current = &user
		d.rewriteSessionLocked(ctx, user)
	}
	return user, nil
}

// rewriteSessionLocked updates the slot currently holding the session.
func (d *Directory) rewriteSessionLocked(ctx context.Context, user models.User) {
	for _, kv := range []storage.KV{d.durable, d.ephemeral} {
		if kv == nil {
			continue
		}
		if _, err := kv.Get(ctx, storage.KeySession); err == nil {
			d.writeSlot(ctx, kv, user)
			return
		}
	}
}

func (d *Directory) writeSlot(ctx context.Context, kv storage.KV, user models.User) {
	if kv == nil {
		return
	}
	user.Credential = ""
	if err := storage.SaveJSON(ctx, kv, storage.KeySession, user); err != nil {
		d.logger.Warn("failed to persist session", slog.String("error", err.Error()))
	}
}

func (d *Directory) clearSlot(ctx context.Context, kv storage.KV) {
	if kv == nil {
		return
	}
	if err := kv.Delete(ctx, storage.KeySession); err != nil {
		d.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}
}

func (d *Directory) persistUsersLocked(ctx context.Context) {
	if d.durable == nil {
		return
	}
	if err := storage.SaveJSON(ctx, d.durable, storage.KeyUsers, d.users); err != nil {
		d.logger.Warn("failed to persist users", slog.String("error", err.Error()))
	}
}

func (d *Directory) indexLocked(id string) int {
	for i := range d.users {
		if d.users[i].ID == id {
			return i
		}
	}
	return -1
}

// emailIndexLocked finds email among users other than exceptID.
func (d *Directory) emailIndexLocked(email, exceptID string) int {
	email = strings.TrimSpace(email)
	for i := range d.users {
		if d.users[i].ID != exceptID && strings.EqualFold(d.users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (d *Directory) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(h), nil
}

// CheckCredential reports whether password matches the user's credential,
// or the default credential when the user has none.
func CheckCredential(user models.User, password string) bool {
	if user.Credential == "" {
		return password == DefaultCredential
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Credential), []byte(password)) == nil
}
