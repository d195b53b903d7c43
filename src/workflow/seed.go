package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"

	"github.com/sirupsen/logrus"
)

const seedSize = 32

// Random hex encoded seed for the steganography watermark
func GenerateSeed() (string, error) {
	buf := make([]byte, seedSize)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Holds the steganography seed and remembers whether the backend already has it
type SeedKeeper struct {
	backend Backend
	monitor monitoring.Monitor
	log     *logrus.Entry

	mtx    sync.Mutex
	seed   string
	synced bool
}

func NewSeedKeeper(client Backend, seed string) (self *SeedKeeper) {
	self = new(SeedKeeper)
	self.backend = client
	self.seed = seed
	self.monitor = monitor_issuer.NewMonitor()
	self.log = logger.NewSublogger("seed")
	return
}

func (self *SeedKeeper) WithMonitor(monitor monitoring.Monitor) *SeedKeeper {
	self.monitor = monitor
	return self
}

// Replaces the seed with a new random one. The new seed needs to be synced again.
func (self *SeedKeeper) Generate() (seed string, err error) {
	seed, err = GenerateSeed()
	if err != nil {
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.seed = seed
	self.synced = false
	return
}

func (self *SeedKeeper) Seed() string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.seed
}

func (self *SeedKeeper) IsSynced() bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.synced
}

// Uploads the seed to the backend
func (self *SeedKeeper) Sync(ctx context.Context, credentials backend.Credentials) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.seed == "" {
		return ErrSeedNotSynced
	}

	err = self.backend.SyncSteganographySeed(ctx, credentials, self.seed)
	if err != nil {
		self.monitor.GetReport().Issuer.Errors.SeedSync.Inc()
		self.log.WithError(err).Error("Failed to sync steganography seed")
		return
	}

	self.synced = true
	self.monitor.GetReport().Issuer.State.SeedsSynced.Inc()
	self.log.Info("Steganography seed synced")
	return
}

// Syncs the seed unless it's already synced. Fails with ErrSeedNotSynced when there's no seed at all.
func (self *SeedKeeper) EnsureSynced(ctx context.Context, credentials backend.Credentials) error {
	if self.IsSynced() {
		return nil
	}
	return self.Sync(ctx, credentials)
}
