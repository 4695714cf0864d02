package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/billing"
	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/models"
	"sellerprep-backend-go/internal/storage"
)

var errMockFailure = errors.New("mock failure")

// --- user repository ---

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.UserProfile
	updateErr error
	updates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.UserProfile)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.StripeCustomerID == customerID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("customer '%s': %w", customerID, db.ErrNotFound)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("email '%s': %w", email, db.ErrNotFound)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user '%s' already exists", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	copied := *user
	r.users[user.ID] = &copied
	r.updates++
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.UserProfile, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

// --- property repository ---

type fakePropertyRepo struct {
	mu         sync.Mutex
	seq        int
	properties map[string]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[string]*models.Property)}
}

func (r *fakePropertyRepo) Create(_ context.Context, property *models.Property) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("prop-%d", r.seq)
	copied := *property
	copied.ID = id
	r.properties[id] = &copied
	return id, nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, propertyID string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[propertyID]
	if !ok {
		return nil, fmt.Errorf("property '%s': %w", propertyID, db.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (r *fakePropertyRepo) GetByOwnerID(_ context.Context, ownerID string) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.properties {
		if p.OwnerID == ownerID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(_ context.Context, property *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[property.ID]; !ok {
		return fmt.Errorf("property '%s': %w", property.ID, db.ErrNotFound)
	}
	copied := *property
	r.properties[property.ID] = &copied
	return nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.properties, propertyID)
	return nil
}

// --- section repository ---

type fakeSectionRepo struct {
	mu       sync.Mutex
	seq      int
	sections map[string]*models.Section
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: make(map[string]*models.Section)}
}

func (r *fakeSectionRepo) Create(_ context.Context, section *models.Section) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("sec-%d", r.seq)
	copied := *section
	copied.ID = id
	r.sections[id] = &copied
	return id, nil
}

func (r *fakeSectionRepo) GetByID(_ context.Context, sectionID string) (*models.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("section '%s': %w", sectionID, db.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSectionRepo) GetByPropertyID(_ context.Context, propertyID string) ([]*models.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Section
	for _, s := range r.sections {
		if s.PropertyID == propertyID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSectionRepo) Delete(_ context.Context, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sections, sectionID)
	return nil
}

func (r *fakeSectionRepo) DeleteByPropertyID(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sections {
		if s.PropertyID == propertyID {
			delete(r.sections, id)
		}
	}
	return nil
}

// --- document repository ---

type fakeDocumentRepo struct {
	mu        sync.Mutex
	seq       int
	documents map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("doc-%d", r.seq)
	copied := *doc
	copied.ID = id
	r.documents[id] = &copied
	return id, nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, docID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[docID]
	if !ok {
		return nil, fmt.Errorf("document '%s': %w", docID, db.ErrNotFound)
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDocumentRepo) GetByPropertyID(_ context.Context, propertyID string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, d := range r.documents {
		if d.PropertyID == propertyID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.documents, docID)
	return nil
}

func (r *fakeDocumentRepo) DeleteByPropertyID(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.documents {
		if d.PropertyID == propertyID {
			delete(r.documents, id)
		}
	}
	return nil
}

func (r *fakeDocumentRepo) DeleteBySectionID(_ context.Context, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.documents {
		if d.SectionID == sectionID {
			delete(r.documents, id)
		}
	}
	return nil
}

// --- image repository ---

type fakeImageRepo struct {
	mu     sync.Mutex
	seq    int
	images map[string]*models.Image
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*models.Image)}
}

func (r *fakeImageRepo) Create(_ context.Context, img *models.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("img-%d", r.seq)
	copied := *img
	copied.ID = id
	r.images[id] = &copied
	return id, nil
}

func (r *fakeImageRepo) GetByID(_ context.Context, imgID string) (*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.images[imgID]
	if !ok {
		return nil, fmt.Errorf("image '%s': %w", imgID, db.ErrNotFound)
	}
	copied := *i
	return &copied, nil
}

func (r *fakeImageRepo) GetByPropertyID(_ context.Context, propertyID string) ([]*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Image
	for _, i := range r.images {
		if i.PropertyID == propertyID {
			copied := *i
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) Delete(_ context.Context, imgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.images, imgID)
	return nil
}

func (r *fakeImageRepo) DeleteByPropertyID(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, i := range r.images {
		if i.PropertyID == propertyID {
			delete(r.images, id)
		}
	}
	return nil
}

func (r *fakeImageRepo) DeleteBySectionID(_ context.Context, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, i := range r.images {
		if i.SectionID == sectionID {
			delete(r.images, id)
		}
	}
	return nil
}

// --- note repository ---

type fakeNoteRepo struct {
	mu    sync.Mutex
	seq   int
	notes map[string]*models.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*models.Note)}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *models.Note) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("note-%d", r.seq)
	copied := *note
	copied.ID = id
	r.notes[id] = &copied
	return id, nil
}

func (r *fakeNoteRepo) GetByID(_ context.Context, noteID string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[noteID]
	if !ok {
		return nil, fmt.Errorf("note '%s': %w", noteID, db.ErrNotFound)
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNoteRepo) GetByPropertyID(_ context.Context, propertyID string) ([]*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Note
	for _, n := range r.notes {
		if n.PropertyID == propertyID {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, noteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, noteID)
	return nil
}

func (r *fakeNoteRepo) DeleteByPropertyID(_ context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notes {
		if n.PropertyID == propertyID {
			delete(r.notes, id)
		}
	}
	return nil
}

func (r *fakeNoteRepo) DeleteBySectionID(_ context.Context, sectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notes {
		if n.SectionID == sectionID {
			delete(r.notes, id)
		}
	}
	return nil
}

// --- payment repository ---

type fakePaymentRepo struct {
	mu       sync.Mutex
	seq      int
	payments []*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("pay-%d", r.seq)
	copied := *payment
	copied.ID = id
	r.payments = append(r.payments, &copied)
	return id, nil
}

func (r *fakePaymentRepo) HasSucceeded(_ context.Context, userID, propertyID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.UserID == userID && p.PropertyID == propertyID && p.Status == models.PaymentSucceeded {
			return true, nil
		}
	}
	return false, nil
}

// --- audit repository ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Create(_ context.Context, entry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- billing provider ---

type fakeBillingProvider struct {
	mu           sync.Mutex
	seq          int
	intents      map[string]*billing.PaymentIntent
	customerErr  error
	intentErr    error
	retrieveErr  error
	parsedEvent  *billing.Event
	parseErr     error
	lastMetadata map[string]string
	customers    int
}

func newFakeBillingProvider() *fakeBillingProvider {
	return &fakeBillingProvider{intents: make(map[string]*billing.PaymentIntent)}
}

func (p *fakeBillingProvider) CreateCustomer(_ context.Context, _, _, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.customerErr != nil {
		return "", p.customerErr
	}
	p.customers++
	return fmt.Sprintf("cus_%d", p.customers), nil
}

func (p *fakeBillingProvider) CreatePaymentIntent(_ context.Context, amountCents int64, _ string, metadata map[string]string) (*billing.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	p.seq++
	intent := &billing.PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", p.seq),
		ClientSecret: fmt.Sprintf("pi_%d_secret", p.seq),
		AmountCents:  amountCents,
		Currency:     "usd",
		Status:       "requires_payment_method",
	}
	p.intents[intent.ID] = intent
	p.lastMetadata = metadata
	return intent, nil
}

func (p *fakeBillingProvider) RetrievePaymentIntent(_ context.Context, intentID string) (*billing.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	intent, ok := p.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("intent '%s' not found", intentID)
	}
	copied := *intent
	return &copied, nil
}

func (p *fakeBillingProvider) ParseWebhookEvent(_ []byte, _ string) (*billing.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.parsedEvent, nil
}

// succeededIntent registers a succeeded intent and returns its ID.
func (p *fakeBillingProvider) succeededIntent(amountCents int64) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	id := fmt.Sprintf("pi_%d", p.seq)
	p.intents[id] = &billing.PaymentIntent{
		ID:          id,
		AmountCents: amountCents,
		Currency:    "usd",
		Status:      billing.PaymentIntentSucceeded,
	}
	return id
}

// --- renderer ---

type fakeRenderer struct {
	mu        sync.Mutex
	renderErr error
	calls     int
	lastDoc   *models.ReportDocument
}

func (r *fakeRenderer) RenderReport(doc *models.ReportDocument) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderErr != nil {
		return nil, r.renderErr
	}
	r.calls++
	r.lastDoc = doc
	return []byte("%PDF-1.4 test"), nil
}

// --- notifier ---

type fakeNotifier struct {
	mu                  sync.Mutex
	welcomes            []string
	exports             []string
	paymentSuccesses    []string
	paymentFailures     []string
	subscriptionUpdates []string // recorded as the delivered status value
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (n *fakeNotifier) SendWelcome(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
}

func (n *fakeNotifier) SendExportConfirmation(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exports = append(n.exports, email)
}

func (n *fakeNotifier) SendPaymentSuccess(email, _ string, _ int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paymentSuccesses = append(n.paymentSuccesses, email)
}

func (n *fakeNotifier) SendPaymentFailure(email, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paymentFailures = append(n.paymentFailures, email)
}

func (n *fakeNotifier) SendSubscriptionUpdate(_, status, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscriptionUpdates = append(n.subscriptionUpdates, status)
}

// --- blob store ---

type fakeBlobStore struct {
	mu        sync.Mutex
	seq       int
	uploadErr error
	deleted   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{}
}

func (s *fakeBlobStore) Upload(_ context.Context, prefix, filename string, r io.Reader) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.seq++
	objectName := fmt.Sprintf("%s/blob-%d/%s", prefix, s.seq, path.Base(filename))
	return &storage.UploadResult{
		ObjectName: objectName,
		URL:        "https://storage.example.com/" + objectName,
		Size:       int64(len(data)),
	}, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectName)
	return nil
}

// --- test environment ---

type testEnv struct {
	users      *fakeUserRepo
	properties *fakePropertyRepo
	sections   *fakeSectionRepo
	documents  *fakeDocumentRepo
	images     *fakeImageRepo
	notes      *fakeNoteRepo
	payments   *fakePaymentRepo
	auditRepo  *fakeAuditRepo
	provider   *fakeBillingProvider
	renderer   *fakeRenderer
	notifier   *fakeNotifier
	blobs      *fakeBlobStore

	userService     UserService
	entitlements    EntitlementService
	propertyService PropertyService
	contentService  ContentService
	exportService   ExportService
	reconciler      *Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:      newFakeUserRepo(),
		properties: newFakePropertyRepo(),
		sections:   newFakeSectionRepo(),
		documents:  newFakeDocumentRepo(),
		images:     newFakeImageRepo(),
		notes:      newFakeNoteRepo(),
		payments:   newFakePaymentRepo(),
		auditRepo:  newFakeAuditRepo(),
		provider:   newFakeBillingProvider(),
		renderer:   &fakeRenderer{},
		notifier:   newFakeNotifier(),
		blobs:      newFakeBlobStore(),
	}
	logger := zap.NewNop()

	auditService, err := NewAuditService(env.auditRepo, logger)
	require.NoError(t, err)
	env.userService, err = NewUserService(env.users, auditService, env.notifier, logger)
	require.NoError(t, err)
	env.entitlements, err = NewEntitlementService(env.users, env.payments, logger)
	require.NoError(t, err)
	env.propertyService, err = NewPropertyService(env.properties, env.sections, env.documents, env.images, env.notes, env.blobs, auditService, logger)
	require.NoError(t, err)
	env.contentService, err = NewContentService(env.properties, env.sections, env.documents, env.images, env.notes, env.blobs, logger)
	require.NoError(t, err)
	env.exportService, err = NewExportService(
		env.userService, env.entitlements,
		env.properties, env.sections, env.documents, env.images, env.notes, env.payments, env.users,
		env.provider, env.renderer, auditService, env.notifier, logger,
	)
	require.NoError(t, err)
	env.reconciler, err = NewReconciler(env.provider, env.users, env.notifier, logger)
	require.NoError(t, err)

	return env
}

func (e *testEnv) seedUser(t *testing.T, profile models.UserProfile) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &profile))
}

func (e *testEnv) seedProperty(t *testing.T, ownerID, address string) string {
	t.Helper()
	id, err := e.properties.Create(context.Background(), &models.Property{OwnerID: ownerID, Address: address})
	require.NoError(t, err)
	return id
}
