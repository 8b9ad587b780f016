package kernel

import (
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernerr"
)

// ServiceRegistry is the kernel's C4 manager: a one-shot
// ServiceId -> ChannelId map. Entries persist through task crashes —
// the entry is the discovery endpoint, not a liveness proof.
type ServiceRegistry struct {
	entries map[domain.ServiceId]domain.ChannelId
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{entries: make(map[domain.ServiceId]domain.ChannelId)}
}

// Register inserts serviceId -> channel. A second registration of the
// same ServiceId fails and does not mutate the map.
func (r *ServiceRegistry) Register(serviceId domain.ServiceId, channel domain.ChannelId) error {
	if _, exists := r.entries[serviceId]; exists {
		return kernerr.NewServiceAlreadyRegistered(serviceId)
	}
	r.entries[serviceId] = channel
	return nil
}

// Lookup returns the channel registered for serviceId, or a distinct
// ServiceNotFound error if absent.
func (r *ServiceRegistry) Lookup(serviceId domain.ServiceId) (domain.ChannelId, error) {
	channel, ok := r.entries[serviceId]
	if !ok {
		return domain.ChannelId{}, kernerr.NewServiceNotFound(serviceId)
	}
	return channel, nil
}
