package services

import (
	"context"
	"sync"
	"time"

	"github.com/menubox/menubox/internal/models"
)

// memVerificationStore is an in-memory VerificationStore with the same
// atomicity contract as the Postgres implementation: Mutate and Redeem
// serialize per store and only commit the record when fn returns nil.
type memVerificationStore struct {
	mu      sync.Mutex
	records map[string]*models.VerificationRecord
	// verified tracks which users Redeem flipped, mirroring the
	// profile update the real store performs in the same transaction.
	verified map[string]bool

	UpsertErr error
	GetErr    error
}

func newMemVerificationStore() *memVerificationStore {
	return &memVerificationStore{
		records:  make(map[string]*models.VerificationRecord),
		verified: make(map[string]bool),
	}
}

func (s *memVerificationStore) Upsert(ctx context.Context, rec *models.VerificationRecord) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if existing, ok := s.records[rec.UID]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.records[rec.UID] = &cp
	return nil
}

func (s *memVerificationStore) Get(ctx context.Context, uid string) (*models.VerificationRecord, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return nil, models.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memVerificationStore) Mutate(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error) {
	return s.apply(uid, fn, false)
}

func (s *memVerificationStore) Redeem(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error) {
	return s.apply(uid, fn, true)
}

func (s *memVerificationStore) apply(uid string, fn func(rec *models.VerificationRecord) error, markVerified bool) (*models.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[uid]
	if !ok {
		return nil, models.ErrRecordNotFound
	}

	cp := *rec
	if err := fn(&cp); err != nil {
		return nil, err
	}

	s.records[uid] = &cp
	if markVerified {
		s.verified[uid] = true
	}

	out := cp
	return &out, nil
}

func (s *memVerificationStore) isVerified(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified[uid]
}

func (s *memVerificationStore) record(uid string) *models.VerificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[uid]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc          func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	SetRestaurantIDFunc func(ctx context.Context, userID, restaurantID string) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) SetRestaurantID(ctx context.Context, userID, restaurantID string) error {
	if m.SetRestaurantIDFunc != nil {
		return m.SetRestaurantIDFunc(ctx, userID, restaurantID)
	}
	return nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateAccessTokenFunc func(userID, email, role string) (string, error)
}

func (m *MockTokenIssuer) GenerateAccessToken(userID, email, role string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, email, role)
	}
	return "test-token", nil
}

// MockCodeIssuer implements CodeIssuer for testing
type MockCodeIssuer struct {
	IssueFunc func(ctx context.Context, uid, email string) error
}

func (m *MockCodeIssuer) Issue(ctx context.Context, uid, email string) error {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, uid, email)
	}
	return nil
}

// sentEmail records one delivery attempt accepted by MockEmailGateway
type sentEmail struct {
	To      string
	Code    string
	AppName string
}

// MockEmailGateway implements EmailGateway for testing. Without a SendFunc
// it accepts every send and records it.
type MockEmailGateway struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, to, code, appName string) error
	Sent     []sentEmail
}

func (m *MockEmailGateway) Send(ctx context.Context, to, code, appName string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, to, code, appName); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentEmail{To: to, Code: code, AppName: appName})
	return nil
}

func (m *MockEmailGateway) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

func (m *MockEmailGateway) lastSent() sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return sentEmail{}
	}
	return m.Sent[len(m.Sent)-1]
}

// MockRestaurantRepository implements RestaurantRepository for testing
type MockRestaurantRepository struct {
	CreateFunc         func(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.Restaurant, error)
	GetBySlugFunc      func(ctx context.Context, slug string) (*models.Restaurant, error)
	GetByOwnerFunc     func(ctx context.Context, ownerUID string) (*models.Restaurant, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.Restaurant, error)
	UpdateBrandingFunc func(ctx context.Context, id string, branding *models.Branding) error
	UpdatePlanFunc     func(ctx context.Context, id, planStatus string, subscriptionEndsAt *time.Time, billingNote string, isActive bool) error
}

func (m *MockRestaurantRepository) Create(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rst)
	}
	return rst, nil
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRestaurantRepository) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockRestaurantRepository) GetByOwner(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerUID)
	}
	return nil, models.ErrNotFound
}

func (m *MockRestaurantRepository) List(ctx context.Context, limit, offset int) ([]*models.Restaurant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Restaurant{}, nil
}

func (m *MockRestaurantRepository) UpdateBranding(ctx context.Context, id string, branding *models.Branding) error {
	if m.UpdateBrandingFunc != nil {
		return m.UpdateBrandingFunc(ctx, id, branding)
	}
	return nil
}

func (m *MockRestaurantRepository) UpdatePlan(ctx context.Context, id, planStatus string, subscriptionEndsAt *time.Time, billingNote string, isActive bool) error {
	if m.UpdatePlanFunc != nil {
		return m.UpdatePlanFunc(ctx, id, planStatus, subscriptionEndsAt, billingNote, isActive)
	}
	return nil
}

// MockMenuRepository implements MenuRepository for testing
type MockMenuRepository struct {
	CreateCategoryFunc func(ctx context.Context, cat *models.Category) (*models.Category, error)
	UpdateCategoryFunc func(ctx context.Context, restaurantID string, cat *models.Category) error
	DeleteCategoryFunc func(ctx context.Context, restaurantID, categoryID string) error
	ListCategoriesFunc func(ctx context.Context, restaurantID string) ([]*models.Category, error)
	CreateItemFunc     func(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItemFunc     func(ctx context.Context, restaurantID string, item *models.Item) error
	DeleteItemFunc     func(ctx context.Context, restaurantID, itemID string) error
	ListItemsFunc      func(ctx context.Context, restaurantID string, availableOnly bool) ([]*models.Item, error)
}

func (m *MockMenuRepository) CreateCategory(ctx context.Context, cat *models.Category) (*models.Category, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, cat)
	}
	return cat, nil
}

func (m *MockMenuRepository) UpdateCategory(ctx context.Context, restaurantID string, cat *models.Category) error {
	if m.UpdateCategoryFunc != nil {
		return m.UpdateCategoryFunc(ctx, restaurantID, cat)
	}
	return nil
}

func (m *MockMenuRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(ctx, restaurantID, categoryID)
	}
	return nil
}

func (m *MockMenuRepository) ListCategories(ctx context.Context, restaurantID string) ([]*models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx, restaurantID)
	}
	return []*models.Category{}, nil
}

func (m *MockMenuRepository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if m.CreateItemFunc != nil {
		return m.CreateItemFunc(ctx, item)
	}
	return item, nil
}

func (m *MockMenuRepository) UpdateItem(ctx context.Context, restaurantID string, item *models.Item) error {
	if m.UpdateItemFunc != nil {
		return m.UpdateItemFunc(ctx, restaurantID, item)
	}
	return nil
}

func (m *MockMenuRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	if m.DeleteItemFunc != nil {
		return m.DeleteItemFunc(ctx, restaurantID, itemID)
	}
	return nil
}

func (m *MockMenuRepository) ListItems(ctx context.Context, restaurantID string, availableOnly bool) ([]*models.Item, error) {
	if m.ListItemsFunc != nil {
		return m.ListItemsFunc(ctx, restaurantID, availableOnly)
	}
	return []*models.Item{}, nil
}
