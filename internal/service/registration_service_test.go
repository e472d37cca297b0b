package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"carmeet/internal/model"
	"carmeet/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegRepo is an in-memory RegistrationRepository keeping rows in
// insertion order
type fakeRegRepo struct {
	regs      []model.Registration
	nextID    int64
	lookups   int
	createErr error
}

func (r *fakeRegRepo) Create(_ context.Context, reg *model.Registration) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	reg.ID = r.nextID
	r.regs = append(r.regs, *reg)
	return nil
}

func (r *fakeRegRepo) FindByID(_ context.Context, id int64) (*model.Registration, error) {
	for _, reg := range r.regs {
		if reg.ID == id {
			copied := reg
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRegRepo) FindByNormalizedPlate(_ context.Context, normalized string) (*model.Registration, error) {
	r.lookups++
	for _, reg := range r.regs { // insertion order, oldest first
		if utils.NormalizePlate(reg.Plate) == normalized {
			copied := reg
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRegRepo) FindAll(_ context.Context) ([]model.Registration, error) {
	out := make([]model.Registration, 0, len(r.regs))
	for i := len(r.regs) - 1; i >= 0; i-- {
		out = append(out, r.regs[i])
	}
	return out, nil
}

func (r *fakeRegRepo) FindAccepted(_ context.Context, limit, offset int) ([]model.Registration, error) {
	var accepted []model.Registration
	for i := len(r.regs) - 1; i >= 0; i-- {
		if r.regs[i].Status == model.StatusAccepted {
			accepted = append(accepted, r.regs[i])
		}
	}
	if offset >= len(accepted) {
		return nil, nil
	}
	accepted = accepted[offset:]
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	return accepted, nil
}

func (r *fakeRegRepo) CountAccepted(_ context.Context) (int64, error) {
	var n int64
	for _, reg := range r.regs {
		if reg.Status == model.StatusAccepted {
			n++
		}
	}
	return n, nil
}

func (r *fakeRegRepo) UpdateStatus(_ context.Context, id int64, status string) (*model.Registration, error) {
	for i := range r.regs {
		if r.regs[i].ID == id {
			r.regs[i].Status = status
			copied := r.regs[i]
			return &copied, nil
		}
	}
	return nil, nil
}

// fakePhotoStore records saves and removals; failAt makes the nth Save
// fail (1-based)
type fakePhotoStore struct {
	saved   []string
	removed []string
	failAt  int
}

func (s *fakePhotoStore) Save(_ context.Context, filename string, _ io.Reader) (string, error) {
	if s.failAt > 0 && len(s.saved)+1 == s.failAt {
		return "", assert.AnError
	}
	url := "/uploads/photos/" + filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakePhotoStore) Remove(_ context.Context, url string) error {
	s.removed = append(s.removed, url)
	return nil
}

func newTestService() (*fakeRegRepo, *fakePhotoStore, RegistrationService) {
	repo := &fakeRegRepo{}
	photos := &fakePhotoStore{}
	return repo, photos, NewRegistrationService(repo, photos)
}

func validRequest() model.CreateRegistrationRequest {
	return model.CreateRegistrationRequest{
		Name:        "Jana Novak",
		Email:       "jana@example.com",
		Mobile:      "+420 123 456 789",
		Car:         "Skoda Octavia",
		Plate:       "1AB 2345",
		Description: "stage 2 build",
	}
}

// photoHeaders builds real multipart file headers so FileHeader.Open works
func photoHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("imagebytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["photos"]
}

func TestSubmit_CreatesPendingRegistration(t *testing.T) {
	repo, _, svc := newTestService()

	id, err := svc.Submit(context.Background(), validRequest(), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, repo.regs, 1)
	reg := repo.regs[0]
	assert.Equal(t, model.StatusPending, reg.Status)
	assert.Equal(t, "Jana Novak", reg.Name)
	assert.Equal(t, "1AB 2345", reg.Plate)
	assert.Nil(t, reg.Instagram)
	assert.Empty(t, reg.Photos)
	assert.WithinDuration(t, time.Now(), reg.CreatedAt, 5*time.Second)
}

func TestSubmit_MissingFields(t *testing.T) {
	repo, _, svc := newTestService()

	req := validRequest()
	req.Email = "   " // whitespace only counts as missing
	req.Plate = ""

	_, err := svc.Submit(context.Background(), req, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"email", "plate"}, vErr.Fields)
	assert.Empty(t, repo.regs, "no row may be created for invalid submissions")
}

func TestSubmit_OptionalInstagram(t *testing.T) {
	repo, _, svc := newTestService()

	req := validRequest()
	req.Instagram = " @jana_drives "

	_, err := svc.Submit(context.Background(), req, nil)

	require.NoError(t, err)
	require.NotNil(t, repo.regs[0].Instagram)
	assert.Equal(t, "@jana_drives", *repo.regs[0].Instagram)
}

func TestSubmit_StoresPhotoURLs(t *testing.T) {
	repo, photos, svc := newTestService()

	_, err := svc.Submit(context.Background(), validRequest(), photoHeaders(t, "front.jpg", "rear.png"))

	require.NoError(t, err)
	require.Len(t, repo.regs, 1)
	assert.Equal(t, photos.saved, repo.regs[0].Photos)
	assert.Len(t, repo.regs[0].Photos, 2)
}

func TestSubmit_UploadFailureAbortsSubmission(t *testing.T) {
	repo, photos, svc := newTestService()
	photos.failAt = 2

	_, err := svc.Submit(context.Background(), validRequest(), photoHeaders(t, "front.jpg", "rear.jpg"))

	assert.Error(t, err)
	assert.Empty(t, repo.regs, "no row may be created when an upload fails")
	require.Len(t, photos.saved, 1)
	assert.Equal(t, photos.saved, photos.removed, "the already-stored photo must be cleaned up")
}

func TestSubmit_RejectsBadPhotoExtension(t *testing.T) {
	repo, photos, svc := newTestService()

	_, err := svc.Submit(context.Background(), validRequest(), photoHeaders(t, "notes.txt"))

	assert.ErrorIs(t, err, ErrInvalidFileFormat)
	assert.Empty(t, photos.saved)
	assert.Empty(t, repo.regs)
}

func TestSubmit_RejectsOversizedPhoto(t *testing.T) {
	repo, photos, svc := newTestService()

	// Size checks run before any bytes are read, so a bare header is enough
	oversized := []*multipart.FileHeader{{Filename: "huge.jpg", Size: MaxPhotoSize + 1}}

	_, err := svc.Submit(context.Background(), validRequest(), oversized)

	assert.ErrorIs(t, err, ErrFileSizeExceeded)
	assert.Empty(t, photos.saved)
	assert.Empty(t, repo.regs)
}

func TestSubmit_StoreFailureRemovesPhotos(t *testing.T) {
	repo, photos, svc := newTestService()
	repo.createErr = assert.AnError

	_, err := svc.Submit(context.Background(), validRequest(), photoHeaders(t, "front.jpg"))

	assert.Error(t, err)
	require.Len(t, photos.saved, 1)
	assert.Equal(t, photos.saved, photos.removed)
}

func TestCheckPlate_NormalizedLookup(t *testing.T) {
	repo, _, svc := newTestService()
	_, err := svc.Submit(context.Background(), validRequest(), nil) // plate "1AB 2345"
	require.NoError(t, err)

	for _, query := range []string{"1AB 2345", "1ab2345", " 1ab 23 45 "} {
		status, err := svc.CheckPlate(context.Background(), query)
		require.NoError(t, err, "query %q", query)
		assert.Equal(t, int64(1), status.ID)
		assert.Equal(t, model.StatusPending, status.Status)
		assert.Equal(t, "Jana Novak", status.Name)
		assert.Equal(t, "1AB 2345", status.Plate)
	}
	assert.Equal(t, 3, repo.lookups)
}

func TestCheckPlate_EmptyPlate(t *testing.T) {
	repo, _, svc := newTestService()

	for _, query := range []string{"", "   ", "\t \n"} {
		_, err := svc.CheckPlate(context.Background(), query)
		assert.ErrorIs(t, err, ErrEmptyPlate, "query %q", query)
	}
	assert.Zero(t, repo.lookups, "empty plates must fail before touching the store")
}

func TestCheckPlate_NotFound(t *testing.T) {
	_, _, svc := newTestService()

	_, err := svc.CheckPlate(context.Background(), "ZZZ 9999")

	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestCheckPlate_DuplicatePlatesResolveOldest(t *testing.T) {
	repo, _, svc := newTestService()
	_, err := svc.Submit(context.Background(), validRequest(), nil)
	require.NoError(t, err)
	req := validRequest()
	req.Plate = "1ab2345" // same normalized plate, later submission
	_, err = svc.Submit(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, repo.regs, 2)

	status, err := svc.CheckPlate(context.Background(), "1AB2345")

	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ID)
}

func TestListAccepted_Pagination(t *testing.T) {
	repo, _, svc := newTestService()
	for i := 0; i < 3; i++ {
		req := validRequest()
		id, err := svc.Submit(context.Background(), req, nil)
		require.NoError(t, err)
		_, err = svc.Moderate(context.Background(), id, model.ActionAccept)
		require.NoError(t, err)
	}
	// A pending one must not show up
	_, err := svc.Submit(context.Background(), validRequest(), nil)
	require.NoError(t, err)
	require.Len(t, repo.regs, 4)

	page, err := svc.ListAccepted(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, int64(3), page.Data[0].ID, "newest accepted first")

	page, err = svc.ListAccepted(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, page.HasMore)
}

func TestListAccepted_ClampsPageAndLimit(t *testing.T) {
	_, _, svc := newTestService()

	page, err := svc.ListAccepted(context.Background(), -3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageLimit, page.Limit)

	page, err = svc.ListAccepted(context.Background(), 1, 10000)
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, page.Limit)
}

func TestModerate_AcceptThenDeclineOverwrites(t *testing.T) {
	_, _, svc := newTestService()
	id, err := svc.Submit(context.Background(), validRequest(), nil)
	require.NoError(t, err)

	updated, err := svc.Moderate(context.Background(), id, model.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, updated.Status)

	// Re-moderating a terminal registration overwrites, it is not rejected
	updated, err = svc.Moderate(context.Background(), id, model.ActionDecline)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, updated.Status)
}

func TestModerate_InvalidAction(t *testing.T) {
	_, _, svc := newTestService()

	_, err := svc.Moderate(context.Background(), 1, "approve")

	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestModerate_UnknownID(t *testing.T) {
	_, _, svc := newTestService()

	_, err := svc.Moderate(context.Background(), 404, model.ActionAccept)

	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationLifecycle(t *testing.T) {
	repo, _, svc := newTestService()
	adminRepo := &fakeAdminRepo{}
	seedAdmin(t, adminRepo, "admin", "hunter2")
	auth := NewAuthService(adminRepo)

	// Visitor submits a registration
	req := validRequest()
	req.Plate = "3AB 1234"
	id, err := svc.Submit(context.Background(), req, nil)
	require.NoError(t, err)

	// Public plate check sees it pending, regardless of spacing and case
	status, err := svc.CheckPlate(context.Background(), "3ab1234")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, status.Status)

	// Admin logs in and accepts it
	token, err := auth.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	admin, err := auth.AdminByToken(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, admin)

	updated, err := svc.Moderate(context.Background(), id, model.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, updated.Status)

	// The same plate check now reports accepted
	status, err = svc.CheckPlate(context.Background(), "3AB 1234")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, status.Status)

	// And the car shows up in the public vehicles listing
	page, err := svc.ListAccepted(context.Background(), 1, DefaultPageLimit)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, id, page.Data[0].ID)
	require.Len(t, repo.regs, 1)
}

func TestListAll_NewestFirst(t *testing.T) {
	_, _, svc := newTestService()
	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), validRequest(), nil)
		require.NoError(t, err)
	}

	regs, err := svc.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, int64(3), regs[0].ID)
	assert.Equal(t, int64(1), regs[2].ID)
}
