package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/application"
	"github.com/jobport/jobport/pkg/softdelete"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"Pending", "Accepted", "Rejected"}
	for _, s := range valid {
		got, err := application.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValues(t *testing.T) {
	for _, s := range []string{"", "pending", "Hired", "ACCEPTED"} {
		if _, err := application.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// memRepo keeps applications in memory with the same partial-uniqueness
// rule as the SQL schema: one active application per (seeker, posting).
type memRepo struct {
	apps map[uuid.UUID]application.Application
}

func newMemRepo() *memRepo { return &memRepo{apps: map[uuid.UUID]application.Application{}} }

func (r *memRepo) Create(_ context.Context, app application.Application) error {
	for _, a := range r.apps {
		if !a.IsRemoved && a.JobSeekerID == app.JobSeekerID && a.JobPostingID == app.JobPostingID {
			return application.ErrAlreadyApplied
		}
	}
	r.apps[app.ID] = app
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID, view softdelete.View) (application.Application, error) {
	a, ok := r.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	if view == softdelete.Active && a.IsRemoved {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (r *memRepo) ListBySeeker(_ context.Context, seekerID uuid.UUID, view softdelete.View, _, _ int) ([]application.Application, error) {
	var out []application.Application
	for _, a := range r.apps {
		if a.JobSeekerID == seekerID && (view != softdelete.Active || !a.IsRemoved) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) ListByPosting(_ context.Context, postingID uuid.UUID, view softdelete.View, _, _ int) ([]application.Application, error) {
	var out []application.Application
	for _, a := range r.apps {
		if a.JobPostingID == postingID && (view != softdelete.Active || !a.IsRemoved) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status application.Status, updatedAt time.Time) error {
	a, ok := r.apps[id]
	if !ok || a.IsRemoved {
		return application.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	r.apps[id] = a
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	a, ok := r.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	a.IsRemoved = true
	r.apps[id] = a
	return nil
}

func (r *memRepo) Purge(_ context.Context, id uuid.UUID) error {
	delete(r.apps, id)
	return nil
}

func TestApply_SetsDefaults(t *testing.T) {
	svc := application.NewService(newMemRepo())
	seeker, post := uuid.New(), uuid.New()

	app, err := svc.Apply(context.Background(), seeker, post)
	if err != nil {
		t.Fatalf("Apply returned unexpected error: %v", err)
	}
	if app.Status != application.StatusPending {
		t.Errorf("new application status = %q, want Pending", app.Status)
	}
	if app.AppliedAt.IsZero() {
		t.Error("AppliedAt must be set on creation")
	}
}

func TestApply_DuplicateRejected(t *testing.T) {
	svc := application.NewService(newMemRepo())
	seeker, post := uuid.New(), uuid.New()

	if _, err := svc.Apply(context.Background(), seeker, post); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	if _, err := svc.Apply(context.Background(), seeker, post); err != application.ErrAlreadyApplied {
		t.Errorf("duplicate Apply error = %v, want ErrAlreadyApplied", err)
	}
}

func TestApply_AllowedAgainAfterWithdraw(t *testing.T) {
	svc := application.NewService(newMemRepo())
	seeker, post := uuid.New(), uuid.New()

	app, err := svc.Apply(context.Background(), seeker, post)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := svc.Withdraw(context.Background(), seeker, app.ID); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if _, err := svc.Apply(context.Background(), seeker, post); err != nil {
		t.Errorf("re-apply after withdraw failed: %v", err)
	}
}

func TestWithdraw_ForeignApplication(t *testing.T) {
	svc := application.NewService(newMemRepo())
	seeker, post := uuid.New(), uuid.New()

	app, err := svc.Apply(context.Background(), seeker, post)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := svc.Withdraw(context.Background(), uuid.New(), app.ID); err != application.ErrNotFound {
		t.Errorf("foreign Withdraw error = %v, want ErrNotFound", err)
	}
}

func TestSetStatus(t *testing.T) {
	repo := newMemRepo()
	svc := application.NewService(repo)
	seeker, post := uuid.New(), uuid.New()

	app, err := svc.Apply(context.Background(), seeker, post)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := svc.SetStatus(context.Background(), app.ID, application.StatusAccepted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _ := svc.GetByID(context.Background(), app.ID)
	if got.Status != application.StatusAccepted {
		t.Errorf("status = %q, want Accepted", got.Status)
	}
	if !got.AppliedAt.Equal(app.AppliedAt) {
		t.Error("AppliedAt must be immutable")
	}

	if err := svc.SetStatus(context.Background(), app.ID, application.Status("Hired")); err == nil {
		t.Error("SetStatus with unknown status expected error, got nil")
	}
}
