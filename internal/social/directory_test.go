package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

func TestDirectory_Register(t *testing.T) {
	d, rec := newTestNetwork(t)
	ctx := context.Background()

	alice, err := d.Register(ctx, "alice", "pass1")
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Name())
	assert.True(t, d.IsOnline("alice"), "registration opens a session")
	assert.Equal(t, []string{"alice joined"}, rec.messages(model.ActivityRegister))
	assert.Empty(t, rec.messages(model.ActivityLogin))

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"password too short", "bob", "abc", model.ErrInvalidPassword},
		{"password too long", "bob", "123456789", model.ErrInvalidPassword},
		{"blank name", "  ", "pass2", model.ErrNameRequired},
		{"name taken", "alice", "other1", model.ErrNameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := d.Register(ctx, tt.user, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, u)
		})
	}

	assert.Len(t, d.AllUsersSummary(), 1, "failed registrations leave no trace")
	assert.True(t, d.VerifyOwnerPassword("alice", "pass1"), "original password kept")
}

func TestDirectory_RegisterPasswordBounds(t *testing.T) {
	d, _ := newTestNetwork(t)
	_, err := d.Register(context.Background(), "four", "1234")
	assert.NoError(t, err)
	_, err = d.Register(context.Background(), "eight", "12345678")
	assert.NoError(t, err)
	_, err = d.Register(context.Background(), "runes", "äöüß")
	assert.NoError(t, err, "length counts characters, not bytes")
}

func TestDirectory_RegisterCancelled(t *testing.T) {
	d, _ := newTestNetwork(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Register(ctx, "alice", "pass1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = d.Lookup("alice")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestDirectory_LoginLogout(t *testing.T) {
	d, rec := newTestNetwork(t)
	ctx := context.Background()
	mustRegister(t, d, "alice", "pass1")

	assert.ErrorIs(t, d.Login(ctx, "alice", "pass1"), model.ErrAlreadyOnline)

	require.NoError(t, d.Logout("alice"))
	assert.False(t, d.IsOnline("alice"))
	assert.ErrorIs(t, d.Logout("alice"), model.ErrNotOnline)

	assert.ErrorIs(t, d.Login(ctx, "nobody", "pass1"), model.ErrUserNotFound)
	assert.ErrorIs(t, d.Login(ctx, "alice", "wrong"), model.ErrWrongPassword)
	assert.False(t, d.IsOnline("alice"), "failed login leaves session set untouched")

	require.NoError(t, d.Login(ctx, "alice", "pass1"))
	assert.True(t, d.IsOnline("alice"))

	assert.Equal(t, []string{"alice connected"}, rec.messages(model.ActivityLogin))
	assert.Equal(t, []string{"alice disconnected"}, rec.messages(model.ActivityLogout))
}

func TestDirectory_VerifyOwnerPassword(t *testing.T) {
	d, _ := newTestNetwork(t)
	mustRegister(t, d, "alice", "pass1")

	assert.True(t, d.VerifyOwnerPassword("alice", "pass1"))
	assert.False(t, d.VerifyOwnerPassword("alice", "pass2"))
	assert.False(t, d.VerifyOwnerPassword("ghost", ""))
}

func TestDirectory_SummaryAndRender(t *testing.T) {
	d, _ := newTestNetwork(t)
	alice := mustRegister(t, d, "alice", "pass1")
	bob := mustRegister(t, d, "bob", "pass2")
	carol := mustRegister(t, d, "carol", "pass3")

	bob.Follow(alice)
	carol.Follow(alice)
	_, err := alice.Publish(model.PostKindText, model.TextPayload{Content: "hi"})
	require.NoError(t, err)

	assert.Equal(t, []model.UserSummary{
		{Name: "alice", PostCount: 1, FollowerCount: 2},
		{Name: "bob", PostCount: 0, FollowerCount: 0},
		{Name: "carol", PostCount: 0, FollowerCount: 0},
	}, d.AllUsersSummary())

	want := "Twitter social network:\n" +
		"User name: alice, Number of posts: 1, Number of followers: 2\n" +
		"User name: bob, Number of posts: 0, Number of followers: 0\n" +
		"User name: carol, Number of posts: 0, Number of followers: 0\n"
	assert.Equal(t, want, d.Render())
}

func TestDirectory_IndependentInstances(t *testing.T) {
	a, _ := newTestNetwork(t)
	b, _ := newTestNetwork(t)
	mustRegister(t, a, "alice", "pass1")

	_, err := b.Lookup("alice")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	mustRegister(t, b, "alice", "other")
}
