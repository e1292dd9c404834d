package service

import (
	"alcyxob/gym-app/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FullName: " Nguyễn Văn An ", Email: " An@Gym.VN ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "an@gym.vn", u.Email)
	assert.Equal(t, "Nguyễn Văn An", u.FullName)
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.Empty(t, u.PasswordHash)

	stored, err := f.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "nguyen van an an@gym.vn", stored.SearchText)

	token, logged, err := svc.Login(ctx, "AN@gym.vn", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims["uid"])
	assert.Equal(t, string(domain.RoleMember), claims["role"])
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "An", Email: "an@gym.vn", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate email", RegisterInput{FullName: "An 2", Email: "AN@gym.vn", Password: "secret1"}, ErrUserAlreadyExists},
		{"short password", RegisterInput{FullName: "Bình", Email: "binh@gym.vn", Password: "123"}, ErrValidation},
		{"bad email", RegisterInput{FullName: "Bình", Email: "binh", Password: "secret1"}, ErrValidation},
		{"missing name", RegisterInput{FullName: "  ", Email: "binh@gym.vn", Password: "secret1"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FullName: "An", Email: "an@gym.vn", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "an@gym.vn", "wrong-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@gym.vn", "secret1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.store.Users().SetStatus(ctx, u.ID, domain.AccountLocked))
	_, _, err = svc.Login(ctx, "an@gym.vn", "secret1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FullName: "An", Email: "an@gym.vn", Password: "secret1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "nope", "newsecret"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "secret1", "123"), ErrValidation)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "secret1", "newsecret"))

	_, _, err = svc.Login(ctx, "an@gym.vn", "secret1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "an@gym.vn", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	trainer := f.trainer(t, "pt@gym.vn")

	name := "Trần Thị Mai"
	specialty := "Yoga"
	updated, err := svc.UpdateProfile(ctx, member.ID, ProfileInput{FullName: &name, Specialty: &specialty})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Empty(t, updated.Specialty, "PT fields are ignored on member accounts")

	updated, err = svc.UpdateProfile(ctx, trainer.ID, ProfileInput{Specialty: &specialty})
	require.NoError(t, err)
	assert.Equal(t, "Yoga", updated.Specialty)

	future := time.Now().AddDate(1, 0, 0)
	_, err = svc.UpdateProfile(ctx, member.ID, ProfileInput{BirthDate: &future})
	assert.ErrorIs(t, err, ErrValidation)

	years := -1
	_, err = svc.UpdateProfile(ctx, trainer.ID, ProfileInput{ExperienceYears: &years})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfileAvatar(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()
	member := f.member(t, "an@gym.vn")
	other := f.member(t, "binh@gym.vn")

	for _, up := range []domain.Upload{
		{OwnerID: member.ID, Kind: domain.UploadAvatar, ObjectKey: "avatar/a/1.jpg", ContentType: "image/jpeg"},
		{OwnerID: member.ID, Kind: domain.UploadAvatar, ObjectKey: "avatar/a/2.jpg", ContentType: "image/jpeg"},
		{OwnerID: other.ID, Kind: domain.UploadAvatar, ObjectKey: "avatar/b/1.jpg", ContentType: "image/jpeg"},
	} {
		up := up
		_, err := f.store.Uploads().Create(ctx, &up)
		require.NoError(t, err)
	}

	key := "avatar/b/1.jpg"
	_, err := svc.UpdateProfile(ctx, member.ID, ProfileInput{AvatarKey: &key})
	assert.ErrorIs(t, err, ErrAccessDenied)

	key = "avatar/missing.jpg"
	_, err = svc.UpdateProfile(ctx, member.ID, ProfileInput{AvatarKey: &key})
	assert.ErrorIs(t, err, ErrUploadNotFound)

	key = "avatar/a/1.jpg"
	_, err = svc.UpdateProfile(ctx, member.ID, ProfileInput{AvatarKey: &key})
	require.NoError(t, err)
	assert.Empty(t, f.files.deleted)

	key = "avatar/a/2.jpg"
	updated, err := svc.UpdateProfile(ctx, member.ID, ProfileInput{AvatarKey: &key})
	require.NoError(t, err)
	assert.Equal(t, "avatar/a/2.jpg", updated.AvatarKey)
	assert.Equal(t, []string{"avatar/a/1.jpg"}, f.files.deleted)
}

func TestEnsureOwner(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureOwner(ctx, "Chủ phòng gym", "owner@gym.vn", "ownerpass"))
	require.NoError(t, svc.EnsureOwner(ctx, "Chủ khác", "other@gym.vn", "ownerpass"))

	n, err := f.store.Users().Count(ctx, domain.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, u, err := svc.Login(ctx, "owner@gym.vn", "ownerpass")
	require.NoError(t, err)
	assert.True(t, u.IsOwner())
}

func TestUserServiceMembersAndTrainers(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store.Users(), f.store.Reviews(), f.log)
	auth := f.authService()
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{FullName: "Nguyễn Văn An", Email: "an@gym.vn", Phone: "0901000001", Password: "secret1"},
		{FullName: "Lê Thị Bình", Email: "binh@gym.vn", Phone: "0901000002", Password: "secret1"},
		{FullName: "Phạm Văn Cường", Email: "cuong@gym.vn", Phone: "0901000003", Password: "secret1"},
	} {
		_, err := auth.Register(ctx, in)
		require.NoError(t, err)
	}

	all, total, err := svc.ListMembers(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	found, total, err := svc.ListMembers(ctx, "van", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "accent-free query matches Văn")
	assert.Len(t, found, 2)

	trainer, err := svc.CreateTrainer(ctx, TrainerInput{FullName: "PT Hùng", Email: "hung@gym.vn", Password: "secret1", Specialty: "Tăng cơ", ExperienceYears: 5})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, trainer.Role)

	_, err = svc.CreateTrainer(ctx, TrainerInput{FullName: "PT Hùng", Email: "hung@gym.vn", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	trainers, err := svc.ListTrainers(ctx)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	assert.Zero(t, trainers[0].Rating.Count)

	_, err = svc.GetTrainer(ctx, found[0].ID)
	assert.ErrorIs(t, err, ErrUserNotFound, "a member is not a PT")
}

func TestUserServiceMemberAccess(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store.Users(), f.store.Reviews(), f.log)
	ctx := context.Background()
	an := f.member(t, "an@gym.vn")
	binh := f.member(t, "binh@gym.vn")
	pt := f.trainer(t, "pt@gym.vn")

	_, err := svc.GetMember(ctx, Actor{ID: an.ID, Role: domain.RoleMember}, binh.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := svc.GetMember(ctx, Actor{ID: pt.ID, Role: domain.RoleTrainer}, binh.ID)
	require.NoError(t, err)
	assert.Equal(t, binh.ID, got.ID)

	_, err = svc.GetMember(ctx, Actor{ID: an.ID, Role: domain.RoleMember}, pt.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	locked, err := svc.SetMemberStatus(ctx, an.ID, domain.AccountLocked)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountLocked, locked.Status)

	_, err = svc.SetMemberStatus(ctx, an.ID, "BAD")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetMemberStatus(ctx, pt.ID, domain.AccountLocked)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
