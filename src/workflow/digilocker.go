package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/backend/responses"
	"github.com/skillchain/issuer/src/utils/logger"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Government ids fetched through DigiLocker. A cached id is trusted by the learner check without another lookup.
type DigiLocker struct {
	backend Backend
	cache   *cache.Cache
	log     *logrus.Entry
}

func NewDigiLocker(client Backend, ttl time.Duration) (self *DigiLocker) {
	self = new(DigiLocker)
	self.backend = client
	// No janitor goroutine, expired records are skipped on read
	self.cache = cache.New(ttl, 0)
	self.log = logger.NewSublogger("digilocker")
	return
}

func normalizeId(id string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(id), " ", ""))
}

// Fetches the record by Aadhaar number and caches it under the Aadhaar and PAN numbers
func (self *DigiLocker) Lookup(ctx context.Context, credentials backend.Credentials, aadhaar string) (out *responses.DigiLocker, err error) {
	out, err = self.backend.GetDigiLockerByAadhaar(ctx, credentials, normalizeId(aadhaar))
	if err != nil {
		return
	}

	self.cache.SetDefault(normalizeId(aadhaar), out)
	if out.AadharNumber != "" {
		self.cache.SetDefault(normalizeId(out.AadharNumber), out)
	}
	if out.PanNumber != "" {
		self.cache.SetDefault(normalizeId(out.PanNumber), out)
	}
	self.log.Debug("DigiLocker record cached")
	return
}

func (self *DigiLocker) Get(id string) (*responses.DigiLocker, bool) {
	v, ok := self.cache.Get(normalizeId(id))
	if !ok {
		return nil, false
	}
	return v.(*responses.DigiLocker), true
}
