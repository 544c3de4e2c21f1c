package accounts_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-vehicle-market/internal/accounts"
	"github.com/ariefcatur/go-vehicle-market/internal/blob"
	"github.com/ariefcatur/go-vehicle-market/internal/memstore"
	"github.com/ariefcatur/go-vehicle-market/internal/validation"
)

func newService(t *testing.T) *accounts.Service {
	t.Helper()
	st := memstore.New()
	svc := accounts.NewService(st.Profiles(), "test-secret", time.Hour, st.KV(),
		blob.NewDiskStore(t.TempDir(), "http://localhost"), zap.NewNop())
	svc.BcryptCost = bcrypt.MinCost
	return svc
}

func signUp(t *testing.T, svc *accounts.Service, email string) accounts.Session {
	t.Helper()
	s, err := svc.SignUp(context.Background(), accounts.SignUpInput{
		Email: email, Password: "rahasia", FullName: "Andi Wijaya", Phone: "0812",
	})
	require.NoError(t, err)
	return s
}

func TestSignUp_AndResolveSession(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	s := signUp(t, svc, "  Andi@Example.com ")
	require.NotEmpty(t, s.Token)
	require.Equal(t, "andi@example.com", s.Profile.Email)
	require.Equal(t, accounts.RoleMember, s.Profile.Role)

	cur, err := svc.CurrentSession(ctx, "Bearer "+s.Token)
	require.NoError(t, err)
	require.Equal(t, s.Profile.ID, cur.Profile.ID)
	require.Equal(t, s.Token, cur.Token)

	_, err = svc.SignUp(ctx, accounts.SignUpInput{Email: "andi@example.com", Password: "rahasia", FullName: "Lain"})
	require.ErrorIs(t, err, accounts.ErrEmailTaken)

	_, err = svc.SignUp(ctx, accounts.SignUpInput{Email: "not-an-email", Password: "123", FullName: ""})
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "full_name")
}

func TestSignIn(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	signUp(t, svc, "andi@example.com")

	s, err := svc.SignIn(ctx, "ANDI@example.com", "rahasia")
	require.NoError(t, err)
	require.Equal(t, "andi@example.com", s.Profile.Email)

	_, err = svc.SignIn(ctx, "andi@example.com", "salah")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "rahasia")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	s := signUp(t, svc, "andi@example.com")

	require.NoError(t, svc.SignOut(ctx, s.Token))
	_, err := svc.CurrentSession(ctx, s.Token)
	require.ErrorIs(t, err, accounts.ErrUnauthenticated)

	// a fresh sign-in is unaffected
	s2, err := svc.SignIn(ctx, "andi@example.com", "rahasia")
	require.NoError(t, err)
	_, err = svc.CurrentSession(ctx, s2.Token)
	require.NoError(t, err)
}

func TestCurrentSession_RejectsBadTokens(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	s := signUp(t, svc, "andi@example.com")

	_, err := svc.CurrentSession(ctx, "")
	require.ErrorIs(t, err, accounts.ErrUnauthenticated)
	_, err = svc.CurrentSession(ctx, "garbage")
	require.ErrorIs(t, err, accounts.ErrUnauthenticated)

	other := newService(t)
	other.Secret = []byte("another-secret")
	_, err = other.CurrentSession(ctx, s.Token)
	require.ErrorIs(t, err, accounts.ErrUnauthenticated)

	svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.CurrentSession(ctx, s.Token)
	require.ErrorIs(t, err, accounts.ErrUnauthenticated)
}

func TestUpdateProfile_Permissions(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := signUp(t, svc, "a@example.com").Profile
	b := signUp(t, svc, "b@example.com").Profile

	name := "Andi W."
	p, err := svc.UpdateProfile(ctx, a, a.ID, accounts.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Andi W.", p.FullName)

	_, err = svc.UpdateProfile(ctx, a, b.ID, accounts.ProfilePatch{FullName: &name})
	require.ErrorIs(t, err, accounts.ErrForbidden)

	admin, created, err := svc.EnsureAdmin(ctx, "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)
	require.True(t, created)
	p, err = svc.UpdateProfile(ctx, admin, b.ID, accounts.ProfilePatch{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, b.ID, p.ID)
	require.Equal(t, accounts.RoleMember, p.Role)
}

func TestCreateMember_RequiresStoredAdminRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	member := signUp(t, svc, "m@example.com").Profile

	in := accounts.CreateMemberInput{Email: "new@example.com", Password: "rahasia", FullName: "Budi"}
	_, err := svc.CreateMember(ctx, member.ID, in)
	require.ErrorIs(t, err, accounts.ErrForbidden)
	_, err = svc.CreateMember(ctx, "no-such-user", in)
	require.ErrorIs(t, err, accounts.ErrForbidden)

	admin, _, err := svc.EnsureAdmin(ctx, "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)

	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	events := svc.Hub.Subscribe(sub)

	p, err := svc.CreateMember(ctx, admin.ID, in)
	require.NoError(t, err)
	require.Equal(t, accounts.RoleMember, p.Role)

	select {
	case e := <-events:
		require.Equal(t, accounts.EventMemberCreated, e.Type)
		require.Equal(t, p.ID, e.UserID)
	case <-time.After(time.Second):
		t.Fatal("no member_created event")
	}

	in.Password = "123"
	in.Email = "other@example.com"
	_, err = svc.CreateMember(ctx, admin.ID, in)
	_, ok := validation.As(err)
	require.True(t, ok)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p1, created, err := svc.EnsureAdmin(ctx, "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, p1.IsAdmin())

	p2, created, err := svc.EnsureAdmin(ctx, "ADMIN@example.com", "different", "Admin")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, p1.ID, p2.ID)
}

func TestUploadIDCard(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	me := signUp(t, svc, "andi@example.com").Profile

	p, err := svc.UploadIDCard(ctx, me.ID, blob.File{Name: "ktp.jpg", Body: strings.NewReader("jpeg")})
	require.NoError(t, err)
	require.NotNil(t, p.IDCardURL)
	require.True(t, strings.HasPrefix(*p.IDCardURL, "http://localhost/media/id-cards/"+me.ID+"/"), *p.IDCardURL)
}

func TestBearer(t *testing.T) {
	require.Equal(t, "abc", accounts.Bearer("Bearer abc"))
	require.Equal(t, "abc", accounts.Bearer("bearer  abc "))
	require.Equal(t, "abc", accounts.Bearer("abc"))
	require.Equal(t, "", accounts.Bearer(""))
}
