package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
)

// MemoryStore keeps everything in-process. It backs demo mode and tests;
// a fresh instance per test gives full isolation.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]models.User
	emails        map[string]uuid.UUID
	claims        map[uuid.UUID]models.Claim
	docs          map[uuid.UUID]models.DocFile
	docOrder      map[uuid.UUID][]uuid.UUID // claim id -> doc ids in upload order
	notifications []models.Notification
	audit         []models.AuditLog
	contracts     map[uuid.UUID]models.SmartContract
	tokens        map[string]models.RefreshToken // key: token hash
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uuid.UUID]models.User),
		emails:    make(map[string]uuid.UUID),
		claims:    make(map[uuid.UUID]models.Claim),
		docs:      make(map[uuid.UUID]models.DocFile),
		docOrder:  make(map[uuid.UUID][]uuid.UUID),
		contracts: make(map[uuid.UUID]models.SmartContract),
		tokens:    make(map[string]models.RefreshToken),
	}
}

// --- users ---

func (m *MemoryStore) CreateUser(u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	key := strings.ToLower(u.Email)
	if _, exists := m.emails[key]; exists {
		return apperr.Duplicate("email already registered")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	m.emails[key] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryStore) ListUsersByRole(roles ...models.Role) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}
	var out []models.User
	for _, u := range m.users {
		if len(roles) == 0 || want[u.Role] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- claims ---

func (m *MemoryStore) CreateClaim(c *models.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Version == 0 {
		c.Version = 1
	}
	stored := *c
	stored.Documents = nil
	m.claims[c.ID] = stored
	return nil
}

func (m *MemoryStore) getClaimLocked(id uuid.UUID) (*models.Claim, bool) {
	c, ok := m.claims[id]
	if !ok {
		return nil, false
	}
	cp := c
	if c.InsurerDecision != nil {
		d := *c.InsurerDecision
		cp.InsurerDecision = &d
	}
	for _, docID := range m.docOrder[id] {
		if d, ok := m.docs[docID]; ok {
			d.Data = nil // listings carry metadata only
			cp.Documents = append(cp.Documents, d)
		}
	}
	return &cp, true
}

func (m *MemoryStore) GetClaim(id uuid.UUID) (*models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.getClaimLocked(id)
	if !ok {
		return nil, apperr.NotFound("claim not found")
	}
	return c, nil
}

func (m *MemoryStore) UpdateClaim(c *models.Claim, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.claims[c.ID]
	if !ok {
		return apperr.NotFound("claim not found")
	}
	if current.Version != expectedVersion {
		return apperr.Conflict("claim was modified concurrently")
	}
	c.Version = expectedVersion + 1
	stored := *c
	if c.InsurerDecision != nil {
		d := *c.InsurerDecision
		stored.InsurerDecision = &d
	}
	stored.Documents = nil
	m.claims[c.ID] = stored
	return nil
}

func (m *MemoryStore) ListClaims() ([]models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Claim, 0, len(m.claims))
	for id := range m.claims {
		c, _ := m.getClaimLocked(id)
		out = append(out, *c)
	}
	sortClaimsNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) ListClaimsByPatient(patientID uuid.UUID) ([]models.Claim, error) {
	all, err := m.ListClaims()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func sortClaimsNewestFirst(claims []models.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
}

// --- documents ---

func (m *MemoryStore) CreateDocument(d *models.DocFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	stored := *d
	stored.Data = append([]byte(nil), d.Data...)
	m.docs[d.ID] = stored
	m.docOrder[d.ClaimID] = append(m.docOrder[d.ClaimID], d.ID)
	return nil
}

func (m *MemoryStore) GetDocument(id uuid.UUID) (*models.DocFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, apperr.NotFound("document not found")
	}
	cp := d
	cp.Data = append([]byte(nil), d.Data...)
	return &cp, nil
}

// --- notifications ---

func (m *MemoryStore) CreateNotification(n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *MemoryStore) ListNotifications(userID uuid.UUID) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) MarkAllNotificationsRead(userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].Read {
			m.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

// --- audit ---

func (m *MemoryStore) AppendAudit(a *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.audit = append(m.audit, *a)
	return nil
}

func (m *MemoryStore) ListAudit(limit int) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AuditLog, len(m.audit))
	copy(out, m.audit)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ListAuditByClaim(claimID uuid.UUID) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.AuditLog
	for _, a := range m.audit {
		if a.ClaimID != nil && *a.ClaimID == claimID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- smart contracts ---

func (m *MemoryStore) CreateContract(sc *models.SmartContract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	if sc.UpdatedAt.IsZero() {
		sc.UpdatedAt = sc.CreatedAt
	}
	if sc.Version == 0 {
		sc.Version = 1
	}
	m.contracts[sc.ID] = *sc
	return nil
}

func (m *MemoryStore) GetContract(id uuid.UUID) (*models.SmartContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.contracts[id]
	if !ok {
		return nil, apperr.NotFound("contract not found")
	}
	return &sc, nil
}

func (m *MemoryStore) GetContractByClaim(claimID uuid.UUID) (*models.SmartContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sc := range m.contracts {
		if sc.ClaimID == claimID {
			cp := sc
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("contract not found")
}

func (m *MemoryStore) UpdateContract(sc *models.SmartContract, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.contracts[sc.ID]
	if !ok {
		return apperr.NotFound("contract not found")
	}
	if current.Version != expectedVersion {
		return apperr.Conflict("contract was modified concurrently")
	}
	sc.Version = expectedVersion + 1
	m.contracts[sc.ID] = *sc
	return nil
}

func (m *MemoryStore) ListContracts() ([]models.SmartContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SmartContract, 0, len(m.contracts))
	for _, sc := range m.contracts {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- refresh tokens ---

func (m *MemoryStore) CreateRefreshToken(t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.tokens[t.TokenHash] = *t
	return nil
}

func (m *MemoryStore) GetRefreshTokenByHash(hash string) (*models.RefreshToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[hash]
	if !ok {
		return nil, apperr.NotFound("refresh token not found")
	}
	return &t, nil
}

func (m *MemoryStore) RevokeRefreshToken(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
			m.tokens[hash] = t
			return nil
		}
	}
	return apperr.NotFound("refresh token not found")
}

func (m *MemoryStore) RevokeRefreshTokenByHash(hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return apperr.NotFound("refresh token not found")
	}
	t.Revoked = true
	m.tokens[hash] = t
	return nil
}

var _ Store = (*MemoryStore)(nil)
