package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/pkg/jwtx"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		FullName: "Alice",
		Phone:    "+34600000001",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, MsgRegistered, res.Message)
	require.NotEmpty(t, res.Token.Value)
	require.Equal(t, int64(1800), res.ExpiresIn)
	require.True(t, res.User.Active)
	require.Equal(t, "alice", res.User.Username)
	require.Equal(t, "+34600000001", res.User.Phone)
	require.Positive(t, res.User.ID)

	claims, err := f.codec.Verify(res.Token.Value)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Empty(t, claims.Purpose)

	roles, err := f.store.Roles().ListRoles(ctx, res.User.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleClient}, roles)

	stored, err := f.store.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@x.com", "correct-horse")

	_, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", FullName: "A", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateUsername)
	require.Equal(t, KindValidationConflict, KindOf(err))

	_, err = f.auth.Register(ctx, RegisterInput{Username: "bob", Email: "alice@x.com", FullName: "B", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	counts, err := f.store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Total)
}

func TestRegister_DuplicatePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", FullName: "A", Phone: "555", Password: "pw"})
	require.NoError(t, err)

	// Phone is only caught by the directory's unique constraint.
	_, err = f.auth.Register(ctx, RegisterInput{Username: "bob", Email: "bob@x.com", FullName: "B", Phone: "555", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicatePhone)

	_, err = f.store.Users().GetUserByUsername(ctx, "bob")
	require.Error(t, err)
}

// missingLookups hides existing users from the pre-insert checks so only
// the directory's unique constraints catch a duplicate.
type missingLookups struct{ store.Store }

func (s missingLookups) Users() store.Users { return missingUsers{s.Store.Users()} }

type missingUsers struct{ store.Users }

func (missingUsers) GetUserByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func (missingUsers) GetUserByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func TestRegister_InsertConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@x.com", "correct-horse")

	auth := &AuthService{Store: missingLookups{f.store}, Codec: f.codec, Notifier: f.notifier}

	_, err := auth.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", FullName: "A", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateUsername)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.Equal(t, KindValidationConflict, KindOf(err))

	_, err = auth.Register(ctx, RegisterInput{Username: "bob", Email: "alice@x.com", FullName: "B", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.Equal(t, KindValidationConflict, KindOf(err))

	counts, err := f.store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Total)
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@x.com", FullName: "A", Password: "pw"}},
		{"blank username", RegisterInput{Username: "   ", Email: "a@x.com", FullName: "A", Password: "pw"}},
		{"missing email", RegisterInput{Username: "a", FullName: "A", Password: "pw"}},
		{"malformed email", RegisterInput{Username: "a", Email: "not-an-email", FullName: "A", Password: "pw"}},
		{"display name email", RegisterInput{Username: "a", Email: "A <a@x.com>", FullName: "A", Password: "pw"}},
		{"missing full name", RegisterInput{Username: "a", Email: "a@x.com", Password: "pw"}},
		{"missing password", RegisterInput{Username: "a", Email: "a@x.com", FullName: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	t.Run("success", func(t *testing.T) {
		res, err := f.auth.Login(ctx, "alice", "correct-horse")
		require.NoError(t, err)
		require.Equal(t, MsgLoggedIn, res.Message)
		require.Equal(t, reg.User.ID, res.User.ID)
		require.NotEmpty(t, res.Token.Value)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "nobody", "correct-horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive with correct password", func(t *testing.T) {
		require.NoError(t, f.store.Users().UpdateActive(ctx, reg.User.ID, false))
		t.Cleanup(func() { _ = f.store.Users().UpdateActive(ctx, reg.User.ID, true) })

		_, errInactive := f.auth.Login(ctx, "alice", "correct-horse")
		_, errWrong := f.auth.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, errInactive, ErrInvalidCredentials)
		require.Equal(t, errWrong.Error(), errInactive.Error())
	})
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	f.clock.Advance(10 * time.Minute)
	res, err := f.auth.Refresh(context.Background(), reg.User)
	require.NoError(t, err)
	require.Equal(t, MsgRefreshed, res.Message)
	require.True(t, res.Token.ExpiresAt.After(reg.Token.ExpiresAt))
	require.NotEqual(t, reg.Token.Value, res.Token.Value)
}

func TestLogoutAndVerify(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	require.Equal(t, MsgLoggedOut, f.auth.Logout(context.Background(), reg.User))

	v := f.auth.VerifySession(reg.User)
	require.True(t, v.Valid)
	require.Equal(t, reg.User, v.User)

	// Logout does not revoke.
	_, err := f.resolver.Require(context.Background(), reg.Token.Value)
	require.NoError(t, err)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")
	require.NoError(t, f.store.Roles().AssignRole(ctx, reg.User.ID, domain.RoleOwner))

	p, err := f.auth.Profile(ctx, reg.User)
	require.NoError(t, err)
	require.Equal(t, reg.User, p.Session)
	require.ElementsMatch(t, []domain.Role{domain.RoleClient, domain.RoleOwner}, p.Roles)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", "alice@x.com", "pw")
	_, err := f.auth.Register(ctx, RegisterInput{Username: "bob", Email: "bob@x.com", FullName: "Bob", Phone: "555", Password: "pw"})
	require.NoError(t, err)

	name, phone := "  Alice Liddell ", "777"
	got, err := f.auth.UpdateProfile(ctx, alice.User, domain.ProfilePatch{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", got.FullName)
	require.Equal(t, "777", got.Phone)
	require.Equal(t, "alice@x.com", got.Email)

	t.Run("phone collision", func(t *testing.T) {
		taken := "555"
		_, err := f.auth.UpdateProfile(ctx, alice.User, domain.ProfilePatch{Phone: &taken})
		require.ErrorIs(t, err, ErrDuplicatePhone)
	})

	t.Run("empty full name rejected", func(t *testing.T) {
		blank := " "
		_, err := f.auth.UpdateProfile(ctx, alice.User, domain.ProfilePatch{FullName: &blank})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty phone clears", func(t *testing.T) {
		empty := ""
		got, err := f.auth.UpdateProfile(ctx, alice.User, domain.ProfilePatch{Phone: &empty})
		require.NoError(t, err)
		require.Empty(t, got.Phone)
	})

	t.Run("empty patch returns current view", func(t *testing.T) {
		got, err := f.auth.UpdateProfile(ctx, alice.User, domain.ProfilePatch{})
		require.NoError(t, err)
		require.Equal(t, "Alice Liddell", got.FullName)
	})
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	_, err := f.auth.ChangePassword(ctx, reg.User, "wrong", "battery-staple")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.ChangePassword(ctx, reg.User, "correct-horse", "")
	require.ErrorIs(t, err, ErrInvalidInput)

	msg, err := f.auth.ChangePassword(ctx, reg.User, "correct-horse", "battery-staple")
	require.NoError(t, err)
	require.Equal(t, MsgPasswordChanged, msg)

	_, err = f.auth.Login(ctx, "alice", "battery-staple")
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "alice", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Previously issued tokens stay valid.
	_, err = f.resolver.Require(ctx, reg.Token.Value)
	require.NoError(t, err)
}

func TestRequestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@x.com", "correct-horse")

	unknown, err := f.auth.RequestPasswordReset(ctx, "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, unknown.ResetToken)
	require.Empty(t, f.notifier.sent)

	known, err := f.auth.RequestPasswordReset(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, unknown.Message, known.Message)
	require.NotNil(t, known.ResetToken)
	require.True(t, f.clock.Now().Add(time.Hour).Equal(known.ResetToken.ExpiresAt))

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, "alice@x.com", f.notifier.sent[0].To)
	require.Equal(t, known.ResetToken.Value, f.notifier.sent[0].Token)

	claims, err := f.codec.Verify(known.ResetToken.Value)
	require.NoError(t, err)
	require.Equal(t, jwtx.PurposePasswordReset, claims.Purpose)
}

func TestRequestPasswordReset_DeliveryFailureHidden(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@x.com", "correct-horse")
	f.notifier.err = errors.New("smtp down")

	res, err := f.auth.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, MsgResetRequested, res.Message)
}

func TestConfirmPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	req, err := f.auth.RequestPasswordReset(ctx, "alice@x.com")
	require.NoError(t, err)

	msg, err := f.auth.ConfirmPasswordReset(ctx, req.ResetToken.Value, "new-secret")
	require.NoError(t, err)
	require.Equal(t, MsgPasswordReset, msg)

	_, err = f.auth.Login(ctx, "alice", "new-secret")
	require.NoError(t, err)

	t.Run("replay allowed until expiry", func(t *testing.T) {
		_, err := f.auth.ConfirmPasswordReset(ctx, req.ResetToken.Value, "newer-secret")
		require.NoError(t, err)
	})

	t.Run("access token has no purpose", func(t *testing.T) {
		_, err := f.auth.ConfirmPasswordReset(ctx, reg.Token.Value, "x")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.auth.ConfirmPasswordReset(ctx, "not.a.jwt", "x")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("missing new password", func(t *testing.T) {
		_, err := f.auth.ConfirmPasswordReset(ctx, req.ResetToken.Value, "")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing user id", func(t *testing.T) {
		tok, err := f.codec.Issue(jwtx.IssueParams{Subject: "alice", Purpose: jwtx.PurposePasswordReset}, time.Hour)
		require.NoError(t, err)
		_, err = f.auth.ConfirmPasswordReset(ctx, tok.Value, "x")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("subject gone", func(t *testing.T) {
		tok, err := f.codec.Issue(jwtx.IssueParams{Subject: "ghost", UserID: 99, Purpose: jwtx.PurposePasswordReset}, time.Hour)
		require.NoError(t, err)
		_, err = f.auth.ConfirmPasswordReset(ctx, tok.Value, "x")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		f.clock.Advance(time.Hour)
		_, err := f.auth.ConfirmPasswordReset(ctx, req.ResetToken.Value, "x")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestDeactivateAndSetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "alice", "alice@x.com", "correct-horse")

	msg, err := f.auth.DeactivateAccount(ctx, reg.User)
	require.NoError(t, err)
	require.Equal(t, MsgDeactivated, msg)

	_, err = f.resolver.Require(ctx, reg.Token.Value)
	require.ErrorIs(t, err, ErrAccountInactive)

	u, err := f.auth.SetActive(ctx, "alice", true)
	require.NoError(t, err)
	require.True(t, u.Active)

	_, err = f.resolver.Require(ctx, reg.Token.Value)
	require.NoError(t, err)

	_, err = f.auth.SetActive(ctx, "nobody", true)
	require.ErrorIs(t, err, ErrUserNotFound)
}
