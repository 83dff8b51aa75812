package clientmanager

import (
	"heroprobe/common/safemap"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ClientManager interface {
	NewClient(conn Conn) (Client, error)
	GetClient(id uuid.UUID) (Client, bool)
	ListClients() []Client
	Count() int
}

type clientManagerImpl struct {
	clients safemap.Safemap[uuid.UUID, Client]
	// Minimum spacing between two accepted messages of one kind from one client.
	window time.Duration
}

func NewClientManager(window time.Duration) ClientManager {
	return &clientManagerImpl{
		clients: safemap.New[uuid.UUID, Client](),
		window:  window,
	}
}

func (cm *clientManagerImpl) GetClient(id uuid.UUID) (Client, bool) {
	return cm.clients.Get(id)
}

func (cm *clientManagerImpl) ListClients() []Client {
	return cm.clients.Values()
}

func (cm *clientManagerImpl) Count() int {
	return cm.clients.Count()
}

func (cm *clientManagerImpl) NewClient(conn Conn) (Client, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	c := &client{
		id:       id,
		conn:     conn,
		manager:  cm,
		limiters: make(map[string]*rate.Limiter),
	}
	cm.clients.Set(id, c)
	return c, nil
}
