package social

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"socialnet/internal/model"
)

type account struct {
	user     *User
	password string
}

// Directory is the registry of a running network: every registered user, their
// credentials, and which of them currently hold an active session.
// Construct one per network and hand it to whatever needs it.
type Directory struct {
	name     string
	factory  *Factory
	activity ActivityLog

	listenerMu sync.RWMutex
	listeners  []InboxListener

	mu       sync.RWMutex
	accounts map[string]*account
	order    []string // registration order, for listings
	online   map[string]struct{}
}

// NewDirectory creates an empty network. A nil activity log discards entries.
func NewDirectory(name string, activity ActivityLog) *Directory {
	if activity == nil {
		activity = discardLog{}
	}
	return &Directory{
		name:     name,
		factory:  NewFactory(),
		activity: activity,
		accounts: make(map[string]*account),
		online:   make(map[string]struct{}),
	}
}

// Name returns the network name.
func (d *Directory) Name() string {
	return d.name
}

// Factory returns the post factory used by this network's users.
func (d *Directory) Factory() *Factory {
	return d.factory
}

// Subscribe adds l to the listeners told about every delivered notification.
func (d *Directory) Subscribe(l InboxListener) {
	d.listenerMu.Lock()
	d.listeners = append(d.listeners, l)
	d.listenerMu.Unlock()
}

func (d *Directory) delivered(n model.Notification) {
	d.listenerMu.RLock()
	listeners := d.listeners
	d.listenerMu.RUnlock()
	for _, l := range listeners {
		l.Delivered(n)
	}
}

// Register signs up a new user and opens a session for it.
func (d *Directory) Register(ctx context.Context, name, password string) (*User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, model.ErrNameRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	d.mu.Lock()
	if _, exists := d.accounts[name]; exists {
		d.mu.Unlock()
		return nil, model.ErrNameTaken
	}
	user := newUser(name, d)
	d.accounts[name] = &account{user: user, password: password}
	d.order = append(d.order, name)
	d.online[name] = struct{}{}
	d.mu.Unlock()

	d.record(model.ActivityRegister, name, name+" joined")
	return user, nil
}

// Login opens a session for a registered user.
func (d *Directory) Login(ctx context.Context, name, password string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("login %s: %w", name, err)
	}

	d.mu.Lock()
	acc, ok := d.accounts[name]
	if !ok {
		d.mu.Unlock()
		return model.ErrUserNotFound
	}
	if acc.password != password {
		d.mu.Unlock()
		return model.ErrWrongPassword
	}
	if _, online := d.online[name]; online {
		d.mu.Unlock()
		return model.ErrAlreadyOnline
	}
	d.online[name] = struct{}{}
	d.mu.Unlock()

	d.record(model.ActivityLogin, name, name+" connected")
	return nil
}

// Logout closes the session of an online user.
func (d *Directory) Logout(name string) error {
	d.mu.Lock()
	if _, online := d.online[name]; !online {
		d.mu.Unlock()
		return model.ErrNotOnline
	}
	delete(d.online, name)
	d.mu.Unlock()

	d.record(model.ActivityLogout, name, name+" disconnected")
	return nil
}

// IsOnline reports whether name currently holds a session.
func (d *Directory) IsOnline(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.online[name]
	return ok
}

// VerifyOwnerPassword compares candidate with the stored password of name.
// Unknown names never verify.
func (d *Directory) VerifyOwnerPassword(name, candidate string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.accounts[name]
	return ok && acc.password == candidate
}

// Lookup returns the registered user with the given name.
func (d *Directory) Lookup(name string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acc, ok := d.accounts[name]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return acc.user, nil
}

// AllUsersSummary lists every user in registration order.
func (d *Directory) AllUsersSummary() []model.UserSummary {
	users := d.users()
	summaries := make([]model.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.Summary()
	}
	return summaries
}

// Render returns the network listing as display text.
func (d *Directory) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s social network:", d.name)
	for _, u := range d.users() {
		b.WriteString("\n")
		b.WriteString(u.Render())
	}
	b.WriteString("\n")
	return b.String()
}

// users snapshots the registered users so callers can read them without
// holding the directory lock.
func (d *Directory) users() []*User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	users := make([]*User, len(d.order))
	for i, name := range d.order {
		users[i] = d.accounts[name].user
	}
	return users
}

func (d *Directory) record(kind, actor, message string) {
	d.activity.Record(model.Activity{
		Kind:    kind,
		Actor:   actor,
		Message: message,
		At:      time.Now(),
	})
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < model.MinPasswordLength || n > model.MaxPasswordLength {
		return model.ErrInvalidPassword
	}
	return nil
}
