package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Shared stubs
// ---------------------------------------------------------------------------

type auditEntry struct {
	entity, oldValue, newValue string
	role                       domain.Role
}

// recordingAudit captures Record calls synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) Record(ctx context.Context, entity, oldValue, newValue string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, _ := domain.IdentityFromContext(ctx)
	a.entries = append(a.entries, auditEntry{entity: entity, oldValue: oldValue, newValue: newValue, role: id.Role})
}

func (a *recordingAudit) History(context.Context) ([]domain.AuditRecord, error) {
	return nil, nil
}

func (a *recordingAudit) last() auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return auditEntry{}
	}
	return a.entries[len(a.entries)-1]
}

func (a *recordingAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

type stubClientRepo struct {
	byID       map[int64]*domain.Client
	nextID     int64
	findErr    error
	lastFilter ports.ListClientsFilter
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[int64]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.nextID++
	c.ID = r.nextID
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) Update(_ context.Context, c *domain.Client) (bool, error) {
	if _, ok := r.byID[c.ID]; !ok {
		return false, nil
	}
	clone := *c
	r.byID[c.ID] = &clone
	return true, nil
}

func (r *stubClientRepo) DeleteByID(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	r.lastFilter = filter
	out := make([]*domain.Client, 0, len(r.byID))
	for _, c := range r.byID {
		if filter.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name)) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type stubProjectRepo struct {
	byID    map[int64]*domain.Project
	nextID  int64
	findErr error
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[int64]*domain.Project)}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) (bool, error) {
	if _, ok := r.byID[p.ID]; !ok {
		return false, nil
	}
	clone := *p
	r.byID[p.ID] = &clone
	return true, nil
}

func (r *stubProjectRepo) DeleteByID(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ListProjectsFilter) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range r.byID {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProjectRepo) FindAllInProgress(ctx context.Context) ([]*domain.Project, error) {
	return r.List(ctx, ports.ListProjectsFilter{Status: domain.StatusInProgress})
}

func asAdmin() context.Context {
	return domain.ContextWithIdentity(context.Background(), domain.Identity{UserID: 1, Role: domain.RoleAdmin})
}

func asFreelancer(id int64) context.Context {
	return domain.ContextWithIdentity(context.Background(), domain.Identity{UserID: id, Role: domain.RoleFreelancer})
}
