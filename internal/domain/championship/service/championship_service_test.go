package service

import (
	"context"
	"testing"
	"thywilluche/internal/domain/championship/model"
	"thywilluche/internal/domain/championship/repository"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/notify"
	pkgmodel "thywilluche/pkg/model"
	"thywilluche/pkg/utils"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockChampionshipRepository struct {
	mock.Mock
}

func (m *MockChampionshipRepository) CreateChampionship(ctx context.Context, c *model.Championship) error {
	return m.Called(c).Error(0)
}

func (m *MockChampionshipRepository) UpdateChampionship(ctx context.Context, c *model.Championship) error {
	return m.Called(c).Error(0)
}

func (m *MockChampionshipRepository) GetChampionshipByID(ctx context.Context, id string) (*model.Championship, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Championship), args.Error(1)
}

func (m *MockChampionshipRepository) GetChampionshipBySlug(ctx context.Context, slug string) (*model.Championship, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Championship), args.Error(1)
}

func (m *MockChampionshipRepository) ListChampionships(ctx context.Context, offset, limit int) ([]model.Championship, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.Championship), args.Get(1).(int64), args.Error(2)
}

func (m *MockChampionshipRepository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	return m.Called(reg).Error(0)
}

func (m *MockChampionshipRepository) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockChampionshipRepository) ListRegistrations(ctx context.Context, f repository.EntryFilter) ([]model.Registration, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]model.Registration), args.Get(1).(int64), args.Error(2)
}

func (m *MockChampionshipRepository) DecideRegistration(ctx context.Context, id string, d repository.Decision) (bool, error) {
	args := m.Called(id, d)
	return args.Bool(0), args.Error(1)
}

func (m *MockChampionshipRepository) CreateReview(ctx context.Context, review *model.ReviewSubmission) error {
	return m.Called(review).Error(0)
}

func (m *MockChampionshipRepository) GetReview(ctx context.Context, id string) (*model.ReviewSubmission, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewSubmission), args.Error(1)
}

func (m *MockChampionshipRepository) ListReviews(ctx context.Context, f repository.EntryFilter) ([]model.ReviewSubmission, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]model.ReviewSubmission), args.Get(1).(int64), args.Error(2)
}

func (m *MockChampionshipRepository) DecideReview(ctx context.Context, id string, d repository.Decision) (bool, error) {
	args := m.Called(id, d)
	return args.Bool(0), args.Error(1)
}

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetByID(ctx context.Context, id string) (*usermodel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

var reviewedAt = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *MockChampionshipRepository
	users    *MockUserLookup
	notifier *notify.Recorder
	svc      *championshipService
}

func newFixture() *fixture {
	f := &fixture{repo: new(MockChampionshipRepository), users: new(MockUserLookup), notifier: &notify.Recorder{}}
	f.svc = NewChampionshipService(f.repo, f.users, f.notifier).(*championshipService)
	f.svc.now = func() time.Time { return reviewedAt }
	return f
}

func championship(open bool) *model.Championship {
	return &model.Championship{
		BaseModel:        pkgmodel.BaseModel{ID: "c-1"},
		Name:             "Spring Review Championship",
		Slug:             "spring-review-championship",
		Year:             2024,
		RegistrationOpen: open,
	}
}

var form = RegistrationInput{
	FullName:   " Ada Obi ",
	Email:      "Ada@Example.com",
	Category:   "Senior",
	ReceiptURL: "https://cdn.example.com/receipts/1.pdf",
}

func TestCreateChampionship(t *testing.T) {
	t.Run("Derives slug", func(t *testing.T) {
		f := newFixture()
		f.repo.On("CreateChampionship", mock.MatchedBy(func(c *model.Championship) bool {
			return c.Slug == "spring-review-championship" && c.RegistrationFee == 10.5
		})).Return(nil)

		c, err := f.svc.CreateChampionship(context.Background(), ChampionshipInput{
			Name: "Spring Review Championship", Year: 2024, RegistrationFee: 10.499,
		})
		require.NoError(t, err)
		assert.Equal(t, 2024, c.Year)
	})

	t.Run("Slug taken", func(t *testing.T) {
		f := newFixture()
		f.repo.On("CreateChampionship", mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := f.svc.CreateChampionship(context.Background(), ChampionshipInput{Name: "Spring", Year: 2024})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("Negative fee", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateChampionship(context.Background(), ChampionshipInput{Name: "Spring", Year: 2024, RegistrationFee: -1})
		assert.ErrorIs(t, err, ErrInvalidFee)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a pending registration", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(true), nil)
		f.repo.On("CreateRegistration", mock.MatchedBy(func(r *model.Registration) bool {
			return r.Status == model.StatusPending && r.FullName == "Ada Obi" &&
				r.Email == "ada@example.com" && r.Category == model.CategorySenior
		})).Return(nil)

		reg, err := f.svc.Register(ctx, "u-1", "c-1", form)
		require.NoError(t, err)
		assert.Equal(t, "Spring Review Championship", reg.Championship.Name)
	})

	t.Run("Closed championship", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(false), nil)

		_, err := f.svc.Register(ctx, "u-1", "c-1", form)
		assert.ErrorIs(t, err, ErrRegistrationClosed)
		f.repo.AssertNotCalled(t, "CreateRegistration", mock.Anything)
	})

	t.Run("Receipt required", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(true), nil)
		in := form
		in.ReceiptURL = "  "

		_, err := f.svc.Register(ctx, "u-1", "c-1", in)
		assert.Equal(t, ErrReceiptRequired, err)
	})

	t.Run("Second registration", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(true), nil)
		f.repo.On("CreateRegistration", mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := f.svc.Register(ctx, "u-1", "c-1", form)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("Unknown championship", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-9").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Register(ctx, "u-1", "c-9", form)
		assert.ErrorIs(t, err, ErrChampionshipNotFound)
	})
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Text or document is required", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(true), nil)

		_, err := f.svc.SubmitReview(ctx, "u-1", "c-1", ReviewInput{BookTitle: "River"})
		assert.Equal(t, ErrReviewContent, err)
	})

	t.Run("Document only", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetChampionshipByID", "c-1").Return(championship(false), nil)
		f.repo.On("CreateReview", mock.MatchedBy(func(r *model.ReviewSubmission) bool {
			return r.Status == model.StatusPending && r.DocumentURL != "" && r.ReviewText == ""
		})).Return(nil)

		review, err := f.svc.SubmitReview(ctx, "u-1", "c-1", ReviewInput{
			BookTitle:   "River",
			DocumentURL: "https://cdn.example.com/documents/r.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "u-1", review.UserID)
	})
}

func pendingRegistration() *model.Registration {
	return &model.Registration{
		BaseModel:    pkgmodel.BaseModel{ID: "r-1"},
		UserID:       "u-1",
		Email:        "ada@example.com",
		Status:       model.StatusPending,
		Championship: championship(true),
	}
}

func TestReviewRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve emails the registrant", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRegistration", "r-1").Return(pendingRegistration(), nil)
		f.repo.On("DecideRegistration", "r-1", repository.Decision{
			Status: model.StatusApproved, AdminNote: "welcome", ReviewedBy: "admin-1", ReviewedAt: reviewedAt,
		}).Return(true, nil)

		reg, err := f.svc.ReviewRegistration(ctx, "admin-1", "r-1", model.StatusApproved, " welcome ")
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, reg.Status)
		assert.Equal(t, reviewedAt, *reg.ReviewedAt)

		sent := f.notifier.All()
		require.Len(t, sent, 1)
		assert.Equal(t, "ada@example.com", sent[0].To)
		assert.Equal(t, notify.TemplateSubmissionReviewed, sent[0].Template)
		assert.Equal(t, "registration", sent[0].Data["Kind"])
		assert.Equal(t, "Spring Review Championship", sent[0].Data["Championship"])
	})

	t.Run("Second decision is refused", func(t *testing.T) {
		f := newFixture()
		reg := pendingRegistration()
		reg.Status = model.StatusRejected
		f.repo.On("GetRegistration", "r-1").Return(reg, nil)

		_, err := f.svc.ReviewRegistration(ctx, "admin-1", "r-1", model.StatusApproved, "")
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
		f.repo.AssertNotCalled(t, "DecideRegistration", mock.Anything, mock.Anything)
	})

	t.Run("Lost race", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRegistration", "r-1").Return(pendingRegistration(), nil)
		f.repo.On("DecideRegistration", "r-1", mock.Anything).Return(false, nil)

		_, err := f.svc.ReviewRegistration(ctx, "admin-1", "r-1", model.StatusRejected, "")
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Pending is not a decision", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ReviewRegistration(ctx, "admin-1", "r-1", model.StatusPending, "")
		assert.Equal(t, ErrInvalidDecision, err)
	})
}

func TestReviewSubmission_UsesAccountEmail(t *testing.T) {
	f := newFixture()
	f.repo.On("GetReview", "s-1").Return(&model.ReviewSubmission{
		BaseModel:    pkgmodel.BaseModel{ID: "s-1"},
		UserID:       "u-1",
		Status:       model.StatusPending,
		Championship: championship(true),
	}, nil)
	f.repo.On("DecideReview", "s-1", mock.Anything).Return(true, nil)
	f.users.On("GetByID", "u-1").Return(&usermodel.User{Email: "reader@example.com"}, nil)

	review, err := f.svc.ReviewSubmission(context.Background(), "admin-1", "s-1", model.StatusRejected, "too short")
	require.NoError(t, err)
	assert.Equal(t, "too short", review.AdminNote)

	sent := f.notifier.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "reader@example.com", sent[0].To)
	assert.Equal(t, "review", sent[0].Data["Kind"])
}

func TestListRegistrations_Filter(t *testing.T) {
	f := newFixture()
	f.repo.On("ListRegistrations", repository.EntryFilter{ChampionshipID: "c-1", Status: model.StatusPending, Offset: 10, Limit: 10}).
		Return([]model.Registration{*pendingRegistration()}, int64(11), nil)

	list, total, err := f.svc.ListRegistrations(context.Background(), EntryQuery{
		ChampionshipID: "c-1",
		Status:         model.StatusPending,
		Pagination:     utils.Pagination{Page: 2, Limit: 10},
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(11), total)

	_, _, err = f.svc.ListRegistrations(context.Background(), EntryQuery{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
