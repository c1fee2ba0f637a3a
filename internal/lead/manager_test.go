package lead_test

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/lead"
	"opsdesk/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users  map[uuid.UUID]database.User
	leads  []database.Lead
	counts map[string]int
}

func (s *fakeStore) CountLeads(ctx context.Context, city util.Optional[string]) (int, error) {
	if !city.IsSet {
		return len(s.leads), nil
	}
	return s.counts[city.Val], nil
}

func (s *fakeStore) CreateLead(ctx context.Context, params database.CreateLeadParams) (database.Lead, error) {
	l := database.Lead{
		ID:         uuid.New(),
		LeadID:     params.LeadID,
		Name:       params.Name,
		Phone:      params.Phone,
		City:       params.City,
		Source:     params.Source,
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
		CreatedBy:  params.CreatedBy,
	}
	s.leads = append(s.leads, l)
	s.counts[l.City]++
	return l, nil
}

func (s *fakeStore) ListLeads(ctx context.Context, params database.ListLeadsParams) ([]database.Lead, error) {
	return append([]database.Lead(nil), s.leads...), nil
}

func (s *fakeStore) GetLeadByID(ctx context.Context, id uuid.UUID) (database.Lead, error) {
	for _, l := range s.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return database.Lead{}, database.ErrLeadNotFound
}

func (s *fakeStore) UpdateLeadByID(ctx context.Context, id uuid.UUID, params database.UpdateLeadParams) error {
	for i := range s.leads {
		if s.leads[i].ID == id {
			if params.Status.IsSet {
				s.leads[i].Status = params.Status.Val
			}
			if params.AssignedTo.IsSet {
				s.leads[i].AssignedTo = params.AssignedTo
			}
			if params.AttachmentURL.IsSet {
				s.leads[i].AttachmentURL = params.AttachmentURL
			}
			return nil
		}
	}
	return database.ErrLeadNotFound
}

func (s *fakeStore) DeleteLeadByID(ctx context.Context, id uuid.UUID) error {
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return nil
		}
	}
	return database.ErrLeadNotFound
}

func (s *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	user, ok := s.users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return user, nil
}

func newManager(t *testing.T, store *fakeStore) lead.Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return lead.NewManager(logger, store, audit.NopRecorder{})
}

func TestCreate(t *testing.T) {
	creatorID := uuid.New()
	store := &fakeStore{
		users:  map[uuid.UUID]database.User{creatorID: {ID: creatorID, Name: "John Smith"}},
		counts: map[string]int{},
	}
	m := newManager(t, store)

	first, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Sharma Constructions",
		Phone:     "9820012345",
		City:      "Mumbai",
		Source:    "referral",
		CreatedBy: creatorID,
	})
	require.NoError(t, err)

	// L/<MMYY>/MUM/JS-01: month and year come from the clock, the rest
	// is deterministic.
	assert.Regexp(t, regexp.MustCompile(`^L/\d{4}/MUM/JS-01$`), first.LeadID)
	assert.Equal(t, string(lead.StatusNew), first.Status)

	second, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Apex Builders",
		Phone:     "9820054321",
		City:      "Mumbai",
		CreatedBy: creatorID,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^L/\d{4}/MUM/JS-02$`), second.LeadID)

	// A different city starts its own sequence.
	other, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Verma Interiors",
		Phone:     "9820011111",
		City:      "Delhi",
		CreatedBy: creatorID,
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^L/\d{4}/DEL/JS-01$`), other.LeadID)
}

func TestCreateUnknownCreator(t *testing.T) {
	store := &fakeStore{users: map[uuid.UUID]database.User{}, counts: map[string]int{}}
	m := newManager(t, store)

	_, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Sharma Constructions",
		Phone:     "9820012345",
		City:      "Mumbai",
		CreatedBy: uuid.New(),
	})
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}

func TestCreateEmptyCityBlocksCreation(t *testing.T) {
	creatorID := uuid.New()
	store := &fakeStore{
		users:  map[uuid.UUID]database.User{creatorID: {ID: creatorID, Name: "John Smith"}},
		counts: map[string]int{},
	}
	m := newManager(t, store)

	_, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "No City",
		Phone:     "9820000000",
		City:      "",
		CreatedBy: creatorID,
	})
	require.Error(t, err)
	assert.Empty(t, store.leads)
}

func TestUpdateStatus(t *testing.T) {
	creatorID := uuid.New()
	store := &fakeStore{
		users:  map[uuid.UUID]database.User{creatorID: {ID: creatorID, Name: "John Smith"}},
		counts: map[string]int{},
	}
	m := newManager(t, store)

	created, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Sharma Constructions",
		Phone:     "9820012345",
		City:      "Mumbai",
		CreatedBy: creatorID,
	})
	require.NoError(t, err)

	require.NoError(t, m.UpdateStatus(context.Background(), creatorID, created.ID, lead.StatusContacted))

	got, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(lead.StatusContacted), got.Status)

	err = m.UpdateStatus(context.Background(), creatorID, created.ID, lead.Status("bogus"))
	assert.ErrorIs(t, err, lead.ErrInvalidStatus)
}

func TestReassign(t *testing.T) {
	creatorID, assigneeID := uuid.New(), uuid.New()
	store := &fakeStore{
		users: map[uuid.UUID]database.User{
			creatorID:  {ID: creatorID, Name: "John Smith"},
			assigneeID: {ID: assigneeID, Name: "Priya Rao"},
		},
		counts: map[string]int{},
	}
	m := newManager(t, store)

	created, err := m.Create(context.Background(), lead.CreateParams{
		Name:      "Sharma Constructions",
		Phone:     "9820012345",
		City:      "Mumbai",
		CreatedBy: creatorID,
	})
	require.NoError(t, err)

	require.NoError(t, m.Reassign(context.Background(), creatorID, created.ID, assigneeID))

	got, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, got.AssignedTo.IsSet)
	assert.Equal(t, assigneeID, got.AssignedTo.Val)

	err = m.Reassign(context.Background(), creatorID, created.ID, uuid.New())
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}
