package shopping

import (
	"log/slog"
	"sync"

	"github.com/aurelia-jewels/aurelia/internal/guest"
	"github.com/aurelia-jewels/aurelia/internal/models"
	"github.com/aurelia-jewels/aurelia/internal/mykafka"
	cartsvc "github.com/aurelia-jewels/aurelia/internal/service/cart"
	wishsvc "github.com/aurelia-jewels/aurelia/internal/service/wishlist"
)

// Mode is the backing-store selector for one browser session.
type Mode int

const (
	ModeGuest Mode = iota
	ModeMerging
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeMerging:
		return "merging"
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "guest"
	}
}

// Identity describes the caller of a single request: a guest session id,
// and the user id when the request carries a valid access token.
type Identity struct {
	UserID        uint
	SessionID     string
	Authenticated bool
}

// CartState is what the facade hands back for cart reads and mutations.
// Exactly one of Guest or User is populated, matching Mode.
type CartState struct {
	Mode  string            `json:"mode"`
	Guest *guest.CartView   `json:"guest,omitempty"`
	User  []models.CartItem `json:"user,omitempty"`
}

// WishlistState mirrors CartState for the wishlist.
type WishlistState struct {
	Mode  string                `json:"mode"`
	Guest *guest.WishlistView   `json:"guest,omitempty"`
	User  []models.WishlistItem `json:"user,omitempty"`
}

type sessionState struct {
	mu             sync.Mutex
	cartMerged     bool
	wishlistMerged bool
	merging        bool
}

// Facade routes cart and wishlist traffic to the guest stores or the
// authenticated services based on the caller's identity, and drains guest
// state into the server exactly once per login session.
type Facade struct {
	GuestCart     *guest.CartStore
	GuestWishlist *guest.WishlistStore
	Cart          *cartsvc.Service
	Wishlist      *wishsvc.Service
	Producer      *mykafka.Producer
	Log           *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewFacade(gc *guest.CartStore, gw *guest.WishlistStore, cs *cartsvc.Service, ws *wishsvc.Service, prod *mykafka.Producer, log *slog.Logger) *Facade {
	return &Facade{
		GuestCart:     gc,
		GuestWishlist: gw,
		Cart:          cs,
		Wishlist:      ws,
		Producer:      prod,
		Log:           log,
		sessions:      make(map[string]*sessionState),
	}
}

func (f *Facade) session(id string) *sessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		s = &sessionState{}
		f.sessions[id] = s
	}
	return s
}

// Mode reports the current state of the session's cart side.
func (f *Facade) Mode(id Identity) Mode {
	if !id.Authenticated {
		return ModeGuest
	}
	s := f.session(id.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.merging {
		return ModeMerging
	}
	return ModeAuthenticated
}

// OnLogout re-arms the merge for the session's next login by dropping the
// session's bookkeeping entry; a fresh entry starts unmerged. An empty
// guest store at that point makes the re-armed merge a no-op.
func (f *Facade) OnLogout(sessionID string) {
	if sessionID == "" {
		return
	}
	f.mu.Lock()
	delete(f.sessions, sessionID)
	f.mu.Unlock()
}
