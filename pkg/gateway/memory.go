package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/models"
)

// MemoryGateway is a map-backed Gateway with the same reconciliation
// semantics as the SQL implementation. It backs dry-run imports and tests.
type MemoryGateway struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	addressesByKey map[string]models.Address
	usersByEmail   map[string]models.User
	hobbiesByName  map[string]models.Hobby
	hobbyLinks     map[string]models.UserHobby
	friendships    map[string]models.Friendship
	likes          map[string]models.Like
	messages       []models.Message
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{state: newMemoryState()}
}

func newMemoryState() memoryState {
	return memoryState{
		addressesByKey: make(map[string]models.Address),
		usersByEmail:   make(map[string]models.User),
		hobbiesByName:  make(map[string]models.Hobby),
		hobbyLinks:     make(map[string]models.UserHobby),
		friendships:    make(map[string]models.Friendship),
		likes:          make(map[string]models.Like),
	}
}

func (s memoryState) clone() memoryState {
	out := newMemoryState()
	for k, v := range s.addressesByKey {
		out.addressesByKey[k] = v
	}
	for k, v := range s.usersByEmail {
		out.usersByEmail[k] = v
	}
	for k, v := range s.hobbiesByName {
		out.hobbiesByName[k] = v
	}
	for k, v := range s.hobbyLinks {
		out.hobbyLinks[k] = v
	}
	for k, v := range s.friendships {
		out.friendships[k] = v
	}
	for k, v := range s.likes {
		out.likes[k] = v
	}
	out.messages = append(out.messages, s.messages...)
	return out
}

func addressKeyString(key models.AddressKey) string {
	part := func(p *string) string {
		if p == nil {
			return "\x00nil"
		}
		return *p
	}
	return strings.Join([]string{part(key.Street), part(key.HouseNo), part(key.ZipCode), part(key.City)}, "\x1f")
}

func (g *MemoryGateway) ResolveAddress(ctx context.Context, key models.AddressKey) (*models.Address, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := addressKeyString(key)
	if existing, ok := g.state.addressesByKey[k]; ok {
		return &existing, false, nil
	}

	addr := models.Address{
		AddressID: uuid.New().String(),
		Street:    key.Street,
		HouseNo:   key.HouseNo,
		ZipCode:   key.ZipCode,
		City:      key.City,
		CreatedAt: time.Now().UTC(),
	}
	g.state.addressesByKey[k] = addr
	return &addr, true, nil
}

func (g *MemoryGateway) ResolveUser(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if req.Email == "" {
		return nil, false, models.ErrEmailRequired
	}
	if existing, ok := g.state.usersByEmail[req.Email]; ok {
		return &existing, false, nil
	}

	now := time.Now().UTC()
	u := models.User{
		UserID:       uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		AddressID:    req.AddressID,
		InterestedIn: req.InterestedIn,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	g.state.usersByEmail[req.Email] = u
	return &u, true, nil
}

func (g *MemoryGateway) ResolveHobby(ctx context.Context, name string) (*models.Hobby, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.state.hobbiesByName[name]; ok {
		return &existing, false, nil
	}

	h := models.Hobby{
		HobbyID:   uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	g.state.hobbiesByName[name] = h
	return &h, true, nil
}

func (g *MemoryGateway) LinkHobby(ctx context.Context, userID, hobbyID string, priority int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := userID + "\x1f" + hobbyID
	if _, ok := g.state.hobbyLinks[k]; ok {
		return false, nil
	}
	g.state.hobbyLinks[k] = models.UserHobby{
		UserID:    userID,
		HobbyID:   hobbyID,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (g *MemoryGateway) UpsertFriendship(ctx context.Context, userID1, userID2, status string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID1 == userID2 {
		return false, fmt.Errorf("self friendship is not allowed")
	}

	low, high := userID1, userID2
	if low > high {
		low, high = high, low
	}
	k := low + "\x1f" + high
	if _, ok := g.state.friendships[k]; ok {
		return false, nil
	}
	g.state.friendships[k] = models.Friendship{
		UserIDLow:  low,
		UserIDHigh: high,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	return true, nil
}

func (g *MemoryGateway) CreateLike(ctx context.Context, req models.CreateLikeRequest) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if req.LikerID == req.LikeeID {
		return false, fmt.Errorf("self like is not allowed")
	}

	ts := "\x00nil"
	if req.LikeTime != nil {
		ts = req.LikeTime.Format(time.RFC3339)
	}
	k := strings.Join([]string{req.LikerID, req.LikeeID, req.Status, ts}, "\x1f")
	if _, ok := g.state.likes[k]; ok {
		return false, nil
	}
	g.state.likes[k] = models.Like{
		LikeID:    uuid.New().String(),
		LikerID:   req.LikerID,
		LikeeID:   req.LikeeID,
		Status:    req.Status,
		LikeTime:  req.LikeTime,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (g *MemoryGateway) CreateMessage(ctx context.Context, req models.CreateMessageRequest) (*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if req.SenderID == req.ReceiverID {
		return nil, fmt.Errorf("self message is not allowed")
	}

	msg := models.Message{
		MessageID:      uuid.New().String(),
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		MessageText:    req.MessageText,
		SendTime:       req.SendTime,
		CreatedAt:      time.Now().UTC(),
	}
	g.state.messages = append(g.state.messages, msg)
	return &msg, nil
}

func (g *MemoryGateway) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if u, ok := g.state.usersByEmail[email]; ok {
		return &u, nil
	}
	return nil, nil
}

func (g *MemoryGateway) Stats(ctx context.Context) (*Stats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return &Stats{
		Users:       len(g.state.usersByEmail),
		Addresses:   len(g.state.addressesByKey),
		Hobbies:     len(g.state.hobbiesByName),
		HobbyLinks:  len(g.state.hobbyLinks),
		Friendships: len(g.state.friendships),
		Likes:       len(g.state.likes),
		Messages:    len(g.state.messages),
	}, nil
}

// WithinBatch snapshots the state and restores it when fn fails, matching
// the all-or-nothing behavior of the SQL batch transaction.
func (g *MemoryGateway) WithinBatch(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	snapshot := g.state.clone()
	g.mu.Unlock()

	if err := fn(ctx); err != nil {
		g.mu.Lock()
		g.state = snapshot
		g.mu.Unlock()
		return err
	}
	return nil
}

// Users returns all users keyed by email. Test helper.
func (g *MemoryGateway) Users() map[string]models.User {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]models.User, len(g.state.usersByEmail))
	for k, v := range g.state.usersByEmail {
		out[k] = v
	}
	return out
}

// Messages returns the message log. Test helper.
func (g *MemoryGateway) Messages() []models.Message {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]models.Message(nil), g.state.messages...)
}
