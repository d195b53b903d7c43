package bulk

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/backend/fake"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestBulkTestSuite(t *testing.T) {
	suite.Run(t, new(BulkTestSuite))
}

type BulkTestSuite struct {
	suite.Suite
	ctx        context.Context
	cancel     context.CancelFunc
	config     *config.Config
	server     *fake.Server
	controller *Controller
}

func (s *BulkTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.config = config.Default()
	s.config.StopTimeout = 5 * time.Second
	s.config.Workflow.VerificationTimeout = 2 * time.Second
	s.config.Workflow.AddSteganography = false
	s.config.Bulk.PauseBetweenEntries = 20 * time.Millisecond
	s.config.Bulk.WorkerPoolSize = 1
	s.config.Monitor.Enabled = false
}

func (s *BulkTestSuite) TearDownTest() {
	if s.controller != nil {
		s.controller.StopWait()
		s.controller = nil
	}
	s.cancel()
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
}

func (s *BulkTestSuite) start(overrides map[string]http.HandlerFunc) *Controller {
	s.server = fake.NewServer(overrides)
	s.config.Backend.Url = s.server.URL

	controller, err := NewController(s.config, backend.NewClient(&s.config.Backend))
	require.NoError(s.T(), err)
	controller.WithCredentials(backend.Credentials{ApiKey: "key-1", BearerToken: "token"})
	require.NoError(s.T(), controller.Start())
	s.controller = controller
	return controller
}

func certificate(t *testing.T) *model.CertificateFile {
	file, err := model.NewCertificateFile("certificate.pdf", []byte("%PDF-1.4\n%bulk certificate\n"))
	require.NoError(t, err)
	return file
}

// Rejects learners whose email starts with "bad"
func isLearnerUnlessBad(w http.ResponseWriter, r *http.Request) {
	fake.JSON(http.StatusOK, map[string]interface{}{
		"is_learner": !strings.HasPrefix(r.PathValue("id"), "bad"),
	})(w, r)
}

func indexesOf(paths []string, path string) (out []int) {
	for i, p := range paths {
		if p == path {
			out = append(out, i)
		}
	}
	return
}

func (s *BulkTestSuite) TestPauseBetweenEntries() {
	s.config.Bulk.PauseBetweenEntries = 150 * time.Millisecond
	controller := s.start(nil)

	batch := NewBatch()
	for _, learner := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		batch.Add(learner, model.IdentifierTypeEmail, certificate(s.T()), nil)
	}
	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))

	extracts := s.server.RequestsTo("/issuer/credentials/extract-ocr")
	overlays := s.server.RequestsTo("/issuer/credentials/overlay-qr")
	require.Len(s.T(), extracts, 3)
	require.Len(s.T(), overlays, 3)

	for i := 1; i < 3; i++ {
		gap := extracts[i].Received.Sub(overlays[i-1].Answered)
		require.GreaterOrEqual(s.T(), gap, s.config.Bulk.PauseBetweenEntries, "entry #%d started %s after the previous one", i+1, gap)
	}
}

func (s *BulkTestSuite) TestRejectsIncompleteBatch() {
	controller := s.start(nil)

	batch := NewBatch()
	batch.Add("a@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	batch.Add("", model.IdentifierTypeEmail, certificate(s.T()), nil)
	batch.Add("c@example.com", model.IdentifierTypeEmail, nil, nil)

	err := controller.Runner.Run(s.ctx, batch)
	require.ErrorIs(s.T(), err, ErrIncompleteBatch)
	require.Contains(s.T(), err.Error(), "#2, #3")

	require.Empty(s.T(), s.server.Requests())
	for _, entry := range batch.Entries() {
		require.Equal(s.T(), model.EntryStatusPending, entry.Status)
		require.Zero(s.T(), entry.Attempts)
	}
	require.Equal(s.T(), uint64(1), controller.Monitor.Report.Bulk.State.RejectedBatches.Load())
}

func (s *BulkTestSuite) TestProcessesInOrder() {
	controller := s.start(nil)

	batch := NewBatch()
	for _, learner := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		batch.Add(learner, model.IdentifierTypeEmail, certificate(s.T()), nil)
	}

	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))

	for _, entry := range batch.Entries() {
		require.Equal(s.T(), model.EntryStatusSuccess, entry.Status, entry.Error)
		require.NotNil(s.T(), entry.Result)
		require.Equal(s.T(), "cred-1", entry.Result.CredentialId)
		require.Nil(s.T(), entry.Progress)
	}

	// Entry N+1 starts only after entry N's overlay resolved
	paths := s.server.Paths()
	extracts := indexesOf(paths, "/issuer/credentials/extract-ocr")
	overlays := indexesOf(paths, "/issuer/credentials/overlay-qr")
	require.Len(s.T(), extracts, 3)
	require.Len(s.T(), overlays, 3)
	for i := 0; i < 3; i++ {
		require.Less(s.T(), extracts[i], overlays[i])
		if i > 0 {
			require.Less(s.T(), overlays[i-1], extracts[i])
		}
	}

	// Learners in list order
	lookups := indexesOf(paths, "/wallet/lookup/a@example.com")
	require.Len(s.T(), lookups, 1)
	require.Less(s.T(), lookups[0], indexesOf(paths, "/wallet/lookup/b@example.com")[0])
	require.Less(s.T(), indexesOf(paths, "/wallet/lookup/b@example.com")[0], indexesOf(paths, "/wallet/lookup/c@example.com")[0])

	state := &controller.Monitor.Report.Bulk.State
	require.Equal(s.T(), uint64(3), state.EntriesSucceeded.Load())
	require.Equal(s.T(), int64(0), state.EntriesQueued.Load())
	require.Equal(s.T(), int64(0), state.EntriesProcessing.Load())
}

func (s *BulkTestSuite) TestFailureStaysOnEntry() {
	controller := s.start(map[string]http.HandlerFunc{
		fake.RouteIsLearner: isLearnerUnlessBad,
	})

	batch := NewBatch()
	first := batch.Add("a@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	failing := batch.Add("bad@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	last := batch.Add("c@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)

	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))

	entry, _ := batch.Get(failing)
	require.Equal(s.T(), model.EntryStatusError, entry.Status)
	require.Contains(s.T(), entry.Error, "learner validation failed")
	require.Nil(s.T(), entry.Result)

	for _, id := range []string{first, last} {
		entry, _ := batch.Get(id)
		require.Equal(s.T(), model.EntryStatusSuccess, entry.Status)
	}
	require.Equal(s.T(), []string{failing}, batch.Failed())

	// The failed learner never reached credential creation
	require.Len(s.T(), s.server.RequestsTo("/issuer/credentials"), 2)
	require.Equal(s.T(), uint64(1), controller.Monitor.Report.Bulk.State.EntriesFailed.Load())
}

func (s *BulkTestSuite) TestRetryFailedEntry() {
	controller := s.start(map[string]http.HandlerFunc{
		fake.RouteOverlay: fake.Text(http.StatusBadGateway, "bad gateway"),
	})

	batch := NewBatch()
	ids := []string{
		batch.Add("a@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil),
		batch.Add("b@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil),
	}
	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))
	require.Equal(s.T(), ids, batch.Failed())

	entry, _ := batch.Get(ids[1])
	require.Contains(s.T(), entry.Error, "overlay step failed")

	// Backend recovers, only the second entry is retried
	s.server.Handle(fake.RouteOverlay, fake.JSON(http.StatusOK, map[string]interface{}{
		"success":         true,
		"certificate_url": "https://files.example.com/cred-1.pdf",
	}))

	require.NoError(s.T(), controller.Runner.Retry(s.ctx, batch, ids[1]))
	require.NoError(s.T(), controller.Runner.Wait(s.ctx, batch))

	retried, _ := batch.Get(ids[1])
	require.Equal(s.T(), model.EntryStatusSuccess, retried.Status)
	require.Equal(s.T(), 2, retried.Attempts)
	require.Empty(s.T(), retried.Error)
	require.NotNil(s.T(), retried.Result)

	untouched, _ := batch.Get(ids[0])
	require.Equal(s.T(), model.EntryStatusError, untouched.Status)
	require.Equal(s.T(), 1, untouched.Attempts)

	require.ErrorIs(s.T(), controller.Runner.Retry(s.ctx, batch, ids[1]), ErrNotFailed)
	require.ErrorIs(s.T(), controller.Runner.Retry(s.ctx, batch, "missing"), ErrEntryNotFound)
	require.Equal(s.T(), uint64(1), controller.Monitor.Report.Bulk.State.EntriesRetried.Load())
}

func (s *BulkTestSuite) TestEditBeforeRetry() {
	controller := s.start(map[string]http.HandlerFunc{
		fake.RouteIsLearner: isLearnerUnlessBad,
	})

	batch := NewBatch()
	id := batch.Add("bad@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))
	require.Equal(s.T(), []string{id}, batch.Failed())

	require.NoError(s.T(), batch.StartEditing(id))
	entry, _ := batch.Get(id)
	require.True(s.T(), entry.IsEditing)

	require.NoError(s.T(), batch.Edit(id, "good@example.com", model.IdentifierTypeEmail, nil))
	entry, _ = batch.Get(id)
	require.False(s.T(), entry.IsEditing)
	require.NotNil(s.T(), entry.CertificateFile)

	require.NoError(s.T(), controller.Runner.Retry(s.ctx, batch, id))
	require.NoError(s.T(), controller.Runner.Wait(s.ctx, batch))

	entry, _ = batch.Get(id)
	require.Equal(s.T(), model.EntryStatusSuccess, entry.Status)
	require.Len(s.T(), s.server.RequestsTo("/wallet/lookup/good@example.com"), 1)
}

func (s *BulkTestSuite) TestBoundedConcurrency() {
	s.config.Bulk.WorkerPoolSize = 2
	controller := s.start(nil)

	batch := NewBatch()
	for i := 0; i < 4; i++ {
		batch.Add("a@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	}
	require.NoError(s.T(), controller.Runner.Run(s.ctx, batch))

	require.Empty(s.T(), batch.Processing())
	for _, entry := range batch.Entries() {
		require.Equal(s.T(), model.EntryStatusSuccess, entry.Status)
		require.Equal(s.T(), 1, entry.Attempts)
	}
	require.Len(s.T(), s.server.RequestsTo("/issuer/credentials/overlay-qr"), 4)
}

func (s *BulkTestSuite) TestSubmitTwiceQueuesOnce() {
	controller := s.start(nil)

	batch := NewBatch()
	batch.Add("a@example.com", model.IdentifierTypeEmail, certificate(s.T()), nil)
	require.NoError(s.T(), controller.Runner.Submit(s.ctx, batch))
	require.NoError(s.T(), controller.Runner.Submit(s.ctx, batch))
	require.NoError(s.T(), controller.Runner.Wait(s.ctx, batch))

	require.Len(s.T(), s.server.RequestsTo("/issuer/credentials"), 1)
}

func TestBatchEntries(t *testing.T) {
	batch := NewBatch()
	require.NotEmpty(t, batch.Id)
	require.ErrorIs(t, batch.Validate(), ErrIncompleteBatch)

	a := batch.Add("a@example.com", model.IdentifierTypeEmail, nil, nil)
	b := batch.Add("b@example.com", model.IdentifierTypeEmail, nil, nil)
	require.NotEqual(t, a, b)

	require.ErrorIs(t, batch.Remove("missing"), ErrEntryNotFound)
	require.NoError(t, batch.Remove(a))
	require.ErrorIs(t, batch.Remove(b), ErrLastEntry)
	require.Equal(t, 1, batch.Len())

	require.ErrorIs(t, batch.enqueueFailed(b), ErrNotFailed)
	require.NoError(t, batch.enqueue(b))
	require.ErrorIs(t, batch.enqueue(b), ErrEntryBusy)
	require.ErrorIs(t, batch.enqueueFailed(b), ErrEntryBusy)
	require.ErrorIs(t, batch.Remove(b), ErrEntryBusy)
	require.ErrorIs(t, batch.Edit(b, "c@example.com", model.IdentifierTypeEmail, nil), ErrEntryBusy)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, batch.Wait(ctx), context.DeadlineExceeded)

	batch.finish(b, nil, os.ErrClosed)
	require.NoError(t, batch.Wait(context.Background()))
	entry, _ := batch.Get(b)
	require.Equal(t, model.EntryStatusError, entry.Status)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-1.4\n%a\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("\x89PNG\r\n\x1a\nrest"), 0o600))

	manifest := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(manifest, []byte(strings.Join([]string{
		"learner_id,identifier_type,certificate_file,template_id",
		"# comment",
		"a@example.com,email,a.pdf,t1",
		"123412341234,aadhar,b.png,",
		"c@example.com,,,",
	}, "\n")), 0o600))

	batch, err := LoadManifest(manifest)
	require.NoError(t, err)

	entries := batch.Entries()
	require.Len(t, entries, 3)

	require.Equal(t, "a@example.com", entries[0].LearnerId)
	require.Equal(t, model.IdentifierTypeEmail, entries[0].IdentifierType)
	require.Equal(t, "application/pdf", entries[0].CertificateFile.MimeType)
	require.Equal(t, "t1", entries[0].Template.Id)

	require.Equal(t, model.IdentifierTypeAadhaar, entries[1].IdentifierType)
	require.Equal(t, "image/png", entries[1].CertificateFile.MimeType)
	require.Nil(t, entries[1].Template)

	require.Nil(t, entries[2].CertificateFile)
	require.ErrorIs(t, batch.Validate(), ErrIncompleteBatch)
}

func TestManifestErrors(t *testing.T) {
	_, err := ReadManifest(strings.NewReader("learner_id,identifier_type\n"), ".")
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ReadManifest(strings.NewReader("learner_id,certificate_file\n"), ".")
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ReadManifest(strings.NewReader("learner_id,identifier_type,certificate_file\na@example.com,passport,\n"), ".")
	require.ErrorIs(t, err, ErrInvalidManifest)
	require.Contains(t, err.Error(), "line 2")

	_, err = ReadManifest(strings.NewReader("learner_id,certificate_file\na@example.com,missing.pdf\n"), t.TempDir())
	require.ErrorIs(t, err, ErrInvalidManifest)
}
