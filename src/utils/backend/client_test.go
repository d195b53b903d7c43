package backend_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/backend/fake"
	"github.com/skillchain/issuer/src/utils/backend/requests"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	creds  backend.Credentials
	server *fake.Server
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.config = config.Default()
	s.creds = backend.Credentials{ApiKey: "key-1", BearerToken: "token"}
}

func (s *ClientTestSuite) TearDownTest() {
	s.cancel()
	if s.server != nil {
		s.server.Close()
	}
}

func (s *ClientTestSuite) client(overrides map[string]http.HandlerFunc) *backend.Client {
	s.server = fake.NewServer(overrides)
	s.config.Backend.Url = s.server.URL
	return backend.NewClient(&s.config.Backend)
}

func (s *ClientTestSuite) TestStatusChecksIgnoreBody() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteApiKeys:       fake.Text(http.StatusOK, "ok"),
		fake.RouteNetworkStatus: fake.JSON(http.StatusOK, map[string]interface{}{"network": "amoy", "chain_id": "0x13882"}),
	})

	require.NoError(s.T(), client.CheckApiKeys(s.ctx, s.creds))

	status, err := client.GetNetworkStatus(s.ctx, s.creds)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), status)

	s.server.Handle(fake.RouteNetworkStatus, fake.Text(http.StatusOK, ""))
	status, err = client.GetNetworkStatus(s.ctx, s.creds)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), status)

	// Typed listing still needs a parsable body
	_, err = client.GetApiKeys(s.ctx, s.creds)
	require.Error(s.T(), err)
}

func (s *ClientTestSuite) TestApiKeyCheckStatus() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteApiKeys: fake.JSON(http.StatusUnauthorized, map[string]string{"detail": "Invalid token"}),
	})

	err := client.CheckApiKeys(s.ctx, s.creds)
	require.ErrorIs(s.T(), err, backend.ErrHttp)
	require.Contains(s.T(), err.Error(), "Invalid token")

	keys := s.server.RequestsTo("/issuer/api-keys")
	require.Len(s.T(), keys, 1)
	require.Equal(s.T(), "Bearer token", keys[0].Header.Get("Authorization"))
}

func (s *ClientTestSuite) TestAuthHeaders() {
	client := s.client(nil)

	_, err := client.GetApiKeys(s.ctx, s.creds)
	require.NoError(s.T(), err)
	_, err = client.GetNetworkStatus(s.ctx, s.creds)
	require.NoError(s.T(), err)

	// Bearer only
	keys := s.server.RequestsTo("/issuer/api-keys")
	require.Len(s.T(), keys, 1)
	require.Equal(s.T(), "Bearer token", keys[0].Header.Get("Authorization"))
	require.Empty(s.T(), keys[0].Header.Get("X-API-Key"))

	// Both
	status := s.server.RequestsTo("/blockchain/network/status")
	require.Len(s.T(), status, 1)
	require.Equal(s.T(), "Bearer token", status[0].Header.Get("Authorization"))
	require.Equal(s.T(), "key-1", status[0].Header.Get("X-API-Key"))
}

func (s *ClientTestSuite) TestHttpErrorDetail() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteNetworkStatus: fake.JSON(http.StatusForbidden, map[string]interface{}{"detail": "Not allowed"}),
	})

	_, err := client.GetNetworkStatus(s.ctx, s.creds)
	require.ErrorIs(s.T(), err, backend.ErrHttp)
	require.NotErrorIs(s.T(), err, backend.ErrNetwork)

	var typed *backend.Error
	require.ErrorAs(s.T(), err, &typed)
	require.Equal(s.T(), http.StatusForbidden, typed.Status)
	require.Equal(s.T(), "Not allowed", typed.Message)
	require.Equal(s.T(), backend.KindHttp, backend.KindOf(err))
}

func (s *ClientTestSuite) TestHttpErrorRawText() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteNetworkStatus: fake.Text(http.StatusBadGateway, "  upstream down \n"),
	})

	_, err := client.GetNetworkStatus(s.ctx, s.creds)
	var typed *backend.Error
	require.ErrorAs(s.T(), err, &typed)
	require.Equal(s.T(), http.StatusBadGateway, typed.Status)
	require.Equal(s.T(), "upstream down", typed.Message)
}

func (s *ClientTestSuite) TestApplicationError() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteCreate: fake.JSON(http.StatusOK, map[string]interface{}{"success": false, "message": "Duplicate credential"}),
	})

	_, err := client.CreateCredential(s.ctx, s.creds, &requests.CreateCredential{IdempotencyKey: "cert_1_abc"})
	require.ErrorIs(s.T(), err, backend.ErrApplication)
	require.Contains(s.T(), err.Error(), "Duplicate credential")
}

func (s *ClientTestSuite) TestMissingCredentialId() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteCreate: fake.JSON(http.StatusCreated, map[string]interface{}{"success": true}),
	})

	_, err := client.CreateCredential(s.ctx, s.creds, &requests.CreateCredential{})
	require.ErrorIs(s.T(), err, backend.ErrApplication)
}

func (s *ClientTestSuite) TestTimeout() {
	client := s.client(map[string]http.HandlerFunc{
		fake.RouteNetworkStatus: fake.Hang(),
	})

	ctx, cancel := context.WithTimeout(s.ctx, 200*time.Millisecond)
	defer cancel()

	_, err := client.GetNetworkStatus(ctx, s.creds)
	require.ErrorIs(s.T(), err, backend.ErrTimeout)
	require.NotErrorIs(s.T(), err, backend.ErrHttp)
}

func (s *ClientTestSuite) TestNetworkError() {
	client := s.client(nil)
	s.server.Close()

	_, err := client.GetNetworkStatus(s.ctx, s.creds)
	require.ErrorIs(s.T(), err, backend.ErrNetwork)
}

func (s *ClientTestSuite) TestOverlayMultipart() {
	client := s.client(nil)
	file, err := model.NewCertificateFile("/tmp/certificate.pdf", []byte("%PDF-1.4\n%test\n"))
	require.NoError(s.T(), err)
	require.Equal(s.T(), "application/pdf", file.MimeType)

	out, err := client.OverlayCertificate(s.ctx, s.creds, file, &requests.Overlay{
		CredentialId:     "cred-1",
		AddQrCode:        true,
		AddSteganography: false,
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), "https://files.example.com/cred-1.pdf", out.CertificateUrl)

	reqs := s.server.RequestsTo("/issuer/credentials/overlay-qr")
	require.Len(s.T(), reqs, 1)
	require.Equal(s.T(), "certificate_file", reqs[0].File)
	require.Equal(s.T(), "cred-1", reqs[0].Form["credential_id"])
	require.Equal(s.T(), "true", reqs[0].Form["add_qr_code"])
	require.Equal(s.T(), "false", reqs[0].Form["add_steganography"])
	_, hasQr := reqs[0].Form["qr_data"]
	require.False(s.T(), hasQr)
}

func (s *ClientTestSuite) TestSearchUsersWrapped() {
	client := s.client(nil)

	users, err := client.SearchUsers(s.ctx, s.creds, "jon")
	require.NoError(s.T(), err)
	require.Len(s.T(), users, 1)
	require.Equal(s.T(), "Jon A Smith", users[0].FullName)
}

func TestParseErrorMessage(t *testing.T) {
	for _, tc := range []struct {
		body     string
		expected string
	}{
		{`{"detail":"Invalid API key"}`, "Invalid API key"},
		{`{"detail":[{"loc":["body","learner_id"],"msg":"field required"}]}`, "learner_id: field required"},
		{`{"message":"Credential not found"}`, "Credential not found"},
		{`{"error":"Forbidden"}`, "Forbidden"},
		{`<html>Bad Gateway</html>`, "<html>Bad Gateway</html>"},
		{`{"other":1}`, `{"other":1}`},
		{``, ``},
	} {
		require.Equal(t, tc.expected, backend.ParseErrorMessage([]byte(tc.body)), tc.body)
	}
}
