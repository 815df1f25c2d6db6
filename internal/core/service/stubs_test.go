package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	mu            sync.Mutex
	seq           int64
	byID          map[string]*domain.Order
	byIdempotency map[string]*domain.Order
	createErr     error
	createCalls   int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		byID:          make(map[string]*domain.Order),
		byIdempotency: make(map[string]*domain.Order),
	}
}

func (r *stubOrderRepo) NextSequence(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, taken := r.byID[o.ID]; taken {
		return domain.ErrDuplicateOrderID
	}
	clone := *o
	clone.Items = append([]domain.LineItem(nil), o.Items...)
	r.byID[o.ID] = &clone
	if o.IdempotencyKey != "" {
		r.byIdempotency[o.IdempotencyKey] = &clone
	}
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byIdempotency[key]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.byID))
	for _, o := range r.byID {
		clone := *o
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubOrderRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type stubDispatcher struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (d *stubDispatcher) Dispatch(n ports.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, e domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// ---------------------------------------------------------------------------
// Users and identities
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID        map[string]*domain.User
	nextID      int
	createCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) conflicts(u *domain.User) bool {
	for id, existing := range r.byID {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email || existing.Username == u.Username {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.createCalls++
	if r.conflicts(u) {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *u
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if r.conflicts(u) {
		return domain.ErrUserExists
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubIdentityRepo struct {
	byKey map[string]*domain.Identity
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byKey: make(map[string]*domain.Identity)}
}

func (r *stubIdentityRepo) FindOrCreate(_ context.Context, p domain.ProviderProfile) (*domain.Identity, error) {
	key := p.Provider + ":" + p.Subject
	if id, ok := r.byKey[key]; ok {
		clone := *id
		return &clone, nil
	}
	id := &domain.Identity{
		ID:       fmt.Sprintf("g%d", len(r.byKey)+1),
		Provider: p.Provider,
		Subject:  p.Subject,
		Name:     p.Name,
		Email:    p.Email,
		Role:     domain.RoleUser,
	}
	r.byKey[key] = id
	clone := *id
	return &clone, nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	for _, ident := range r.byKey {
		if ident.ID == id {
			clone := *ident
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Catalog, blobs and requests
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	byID      map[string]*domain.Product
	nextID    int
	createErr error
	deleteErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = fmt.Sprintf("p%d", r.nextID)
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubBlobStore struct {
	uploads   []ports.BlobUpload
	deletes   []string
	uploadErr error
	deleteErr error
}

func (b *stubBlobStore) Upload(_ context.Context, in ports.BlobUpload) (domain.ImageRef, error) {
	if b.uploadErr != nil {
		return domain.ImageRef{}, b.uploadErr
	}
	b.uploads = append(b.uploads, in)
	handle := fmt.Sprintf("%s/%s", in.Folder, in.Filename)
	return domain.ImageRef{URL: "https://blobs.test/" + handle, Handle: handle}, nil
}

func (b *stubBlobStore) Delete(_ context.Context, handle string) error {
	b.deletes = append(b.deletes, handle)
	return b.deleteErr
}

type stubRequestRepo struct {
	saved     []*domain.CustomRequest
	createErr error
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.CustomRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *req
	r.saved = append(r.saved, &clone)
	return nil
}
