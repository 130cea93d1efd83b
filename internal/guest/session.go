package guest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

// SessionTTL is how long a guest session id stays valid after creation.
const SessionTTL = 30 * 24 * time.Hour

// SessionKeeper issues and persists anonymous session ids. The sessions
// table is the primary tier; when a write there fails the session lives in
// the in-process map for the rest of the process life, so guests keep a
// working cart even with a degraded database.
type SessionKeeper struct {
	DB  *gorm.DB
	Log *slog.Logger

	mu  sync.Mutex
	mem map[string]models.GuestSession
}

func NewSessionKeeper(db *gorm.DB, log *slog.Logger) *SessionKeeper {
	return &SessionKeeper{
		DB:  db,
		Log: log,
		mem: make(map[string]models.GuestSession),
	}
}

// GetOrCreate returns current when it identifies a live session, otherwise
// a freshly issued id. Expired and unknown ids are replaced, never revived.
func (k *SessionKeeper) GetOrCreate(ctx context.Context, current string) (string, error) {
	now := time.Now().UnixMilli()

	if current != "" {
		if s, ok := k.lookup(ctx, current); ok && now < s.ExpiresAt {
			return s.ID, nil
		}
	}

	return k.issue(ctx), nil
}

// Refresh issues a new id regardless of the state of the current one.
func (k *SessionKeeper) Refresh(ctx context.Context) (string, error) {
	return k.issue(ctx), nil
}

// Clear forgets the session in both tiers.
func (k *SessionKeeper) Clear(ctx context.Context, id string) error {
	k.mu.Lock()
	delete(k.mem, id)
	k.mu.Unlock()

	if err := k.DB.WithContext(ctx).Delete(&models.GuestSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("clear guest session: %w", err)
	}
	return nil
}

func (k *SessionKeeper) lookup(ctx context.Context, id string) (models.GuestSession, bool) {
	k.mu.Lock()
	if s, ok := k.mem[id]; ok {
		k.mu.Unlock()
		return s, true
	}
	k.mu.Unlock()

	var s models.GuestSession
	if err := k.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return models.GuestSession{}, false
	}
	return s, true
}

func (k *SessionKeeper) issue(ctx context.Context) string {
	now := time.Now()
	s := models.GuestSession{
		ID:        newSessionID(now),
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(SessionTTL).UnixMilli(),
	}

	if err := k.DB.WithContext(ctx).Create(&s).Error; err != nil {
		k.Log.Warn("guest session write failed, keeping in memory", "session", s.ID, "error", err)
		k.mu.Lock()
		k.mem[s.ID] = s
		k.mu.Unlock()
	}
	return s.ID
}

func newSessionID(now time.Time) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("guest_%d_fallback", now.UnixMilli())
	}
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), hex.EncodeToString(buf))
}
