package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User // by id
	nextID int
	// lookupErr, when set, is returned by every Find* call.
	lookupErr error
	// afterResetLookup runs once FindByResetToken has matched a user.
	afterResetLookup func()
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User, withPassword bool) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if !withPassword {
		clone.PasswordHash = ""
	}
	if u.Avatar != nil {
		avatar := *u.Avatar
		clone.Avatar = &avatar
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user, true)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored, true), nil
}

func (r *stubUserRepo) find(id string, withPassword bool) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u, withPassword), nil
}

func (r *stubUserRepo) findByEmail(email string, withPassword bool) (*domain.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u, withPassword), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(id, false)
}

func (r *stubUserRepo) FindByIDWithPassword(_ context.Context, id string) (*domain.User, error) {
	return r.find(id, true)
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findByEmail(email, false)
}

func (r *stubUserRepo) FindByEmailWithPassword(_ context.Context, email string) (*domain.User, error) {
	return r.findByEmail(email, true)
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Role = user.Role
	stored.Avatar = user.Avatar
	return cloneUser(stored, false), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expire time.Time) error {
	stored, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.ResetPasswordToken = tokenHash
	stored.ResetPasswordExpire = &expire
	return nil
}

func (r *stubUserRepo) ClearResetToken(_ context.Context, id string) error {
	stored, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.ResetPasswordToken = ""
	stored.ResetPasswordExpire = nil
	return nil
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetPasswordToken != "" && u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			if r.afterResetLookup != nil {
				r.afterResetLookup()
			}
			return cloneUser(u, false), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) CompletePasswordReset(_ context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	stored, ok := r.users[id]
	if !ok || stored.ResetPasswordToken != tokenHash ||
		stored.ResetPasswordExpire == nil || !stored.ResetPasswordExpire.After(now) {
		return domain.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	stored.ResetPasswordToken = ""
	stored.ResetPasswordExpire = nil
	return nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubMailer struct {
	sendErr error
	sent    []ports.MailMessage
}

func (m *stubMailer) Send(_ context.Context, msg ports.MailMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubDenylist struct {
	revoked map[string]time.Time
	err     error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: make(map[string]time.Time)}
}

func (d *stubDenylist) Revoke(_ context.Context, token string, until time.Time) error {
	if d.err != nil {
		return d.err
	}
	d.revoked[token] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[token]
	return ok, nil
}

type stubStorage struct {
	uploadErr error
	uploads   []string // folder/filename
	deleted   []string
	body      []byte
}

func (s *stubStorage) Upload(_ context.Context, folder, filename, _ string, body io.Reader, _ int64) (*ports.StoredObject, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	s.body = data
	key := folder + "/" + filename
	s.uploads = append(s.uploads, key)
	return &ports.StoredObject{PublicID: key, URL: "https://cdn.example.com/" + key}, nil
}

func (s *stubStorage) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type stubCleanup struct {
	mu        sync.Mutex
	scheduled []string
}

func (c *stubCleanup) ScheduleDelete(publicID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduled = append(c.scheduled, publicID)
}

// ---------------------------------------------------------------------------
// Orders / products
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	orders   map[string]*domain.Order
	products map[string]*domain.Product // shared with stubProductRepo in tests that need stock
	nextID   int
	buckets  []ports.DailyBucket
	salesErr error
	// salesCalls records the range passed to DailySales.
	salesCalls [][2]time.Time
	applied    []domain.StatusChange
	// beforeApply runs at the start of ApplyStatusChange, after the service
	// has read the order.
	beforeApply func()
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   make(map[string]*domain.Order),
		products: make(map[string]*domain.Product),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.OrderItem(nil), o.Items...)
	return &clone
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.nextID++
	stored := cloneOrder(order)
	stored.ID = fmt.Sprintf("order-%d", r.nextID)
	r.orders[stored.ID] = stored
	return cloneOrder(stored), nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// ApplyStatusChange mirrors the transactional Mongo implementation: the
// order must still be in change.From, and all products are checked before
// any stock is touched.
func (r *stubOrderRepo) ApplyStatusChange(_ context.Context, change domain.StatusChange) error {
	if r.beforeApply != nil {
		r.beforeApply()
	}
	r.applied = append(r.applied, change)

	o, ok := r.orders[change.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != change.From || (change.DeductStock && o.StockDeducted) {
		if o.Status == domain.OrderDelivered {
			return domain.ErrOrderDelivered
		}
		return domain.ErrOrderStatusChanged
	}

	if change.DeductStock {
		for _, item := range change.Items {
			p, ok := r.products[item.Product]
			if !ok {
				return domain.ErrProductNotFound
			}
			if p.Stock < item.Quantity {
				return domain.ErrInsufficientStock
			}
		}
		for _, item := range change.Items {
			r.products[item.Product].Stock -= item.Quantity
		}
		o.StockDeducted = true
	}

	o.Status = change.To
	if change.DeliveredAt != nil {
		t := *change.DeliveredAt
		o.DeliveredAt = &t
	}
	return nil
}

func (r *stubOrderRepo) DailySales(_ context.Context, from, to time.Time) ([]ports.DailyBucket, error) {
	r.salesCalls = append(r.salesCalls, [2]time.Time{from, to})
	if r.salesErr != nil {
		return nil, r.salesErr
	}
	return r.buckets, nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
	nextID   int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("product-%d", r.nextID)
	r.products[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	var matched []*domain.Product
	for _, p := range r.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Product{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubProductRepo) ReplaceAll(_ context.Context, products []*domain.Product) error {
	return errors.New("not implemented")
}
