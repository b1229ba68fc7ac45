package warmup

import (
	"math/rand"
	"sync"

	"github.com/warmuphero/warmstack/internal/models"
)

// PeerPicker selects a recipient for one warmup message. Implementations
// must never return the sender itself and must be safe for concurrent use;
// the cycle worker pool calls the picker from multiple goroutines.
type PeerPicker func(sender models.EmailAccount, pool []models.EmailAccount) (models.EmailAccount, bool)

// NewRandomPeerPicker prefers peers owned by a different user so warmup
// traffic crosses tenants; when the sender's user owns the whole pool it
// falls back to any other account. rand.Rand is not goroutine safe, so the
// picker serializes access to it.
func NewRandomPeerPicker(rng *rand.Rand) PeerPicker {
	var mu sync.Mutex
	pick := func(candidates []models.EmailAccount) models.EmailAccount {
		mu.Lock()
		defer mu.Unlock()
		return candidates[rng.Intn(len(candidates))]
	}

	return func(sender models.EmailAccount, pool []models.EmailAccount) (models.EmailAccount, bool) {
		crossTenant := make([]models.EmailAccount, 0, len(pool))
		others := make([]models.EmailAccount, 0, len(pool))

		for _, candidate := range pool {
			if candidate.ID == sender.ID {
				continue
			}
			others = append(others, candidate)
			if candidate.UserID != sender.UserID {
				crossTenant = append(crossTenant, candidate)
			}
		}

		if len(crossTenant) > 0 {
			return pick(crossTenant), true
		}
		if len(others) > 0 {
			return pick(others), true
		}
		return models.EmailAccount{}, false
	}
}
