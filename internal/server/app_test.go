package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/config"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret-with-enough-entropy"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
	Warning string          `json:"warning"`
}

// failingCardRepo returns the configured error for every call.
type failingCardRepo struct {
	mock.Mock
}

func (m *failingCardRepo) Create(ctx context.Context, ownerID string, f models.ReportCardFields) (*models.ReportCard, error) {
	args := m.Called(ownerID)
	return nil, args.Error(0)
}

func (m *failingCardRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.ReportCard, error) {
	args := m.Called(ownerID)
	return nil, args.Error(0)
}

func (m *failingCardRepo) CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.ReportStatus) (int64, error) {
	args := m.Called(ownerID)
	return 0, args.Error(0)
}

func (m *failingCardRepo) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status models.ReportStatus) (*models.ReportCard, error) {
	args := m.Called(ownerID)
	return nil, args.Error(0)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type AppSuite struct {
	suite.Suite
	cfg   *config.Config
	repo  *repository.Memory
	store *storage.MemoryStore
	app   *fiber.App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	s.cfg = &config.Config{
		CORSOrigins:     "*",
		BodyLimit:       1 << 20,
		RateLimitPerMin: 1000,
		UploadMaxBytes:  1024,
	}
	s.repo = repository.NewMemory()
	s.store = storage.NewMemoryStore("http://localhost/files")
	s.app = s.newApp(s.repo)
}

func (s *AppSuite) newApp(cards repository.ReportCardRepository) *fiber.App {
	return New(s.cfg, Deps{
		Authenticator: auth.NewAuthenticator(auth.NewSecretDecoder([]byte(testSecret)), nil),
		ReportCards:   cards,
		Profiles:      s.repo,
		DB:            s.repo,
		Store:         s.store,
	})
}

func (s *AppSuite) token(sub, email string, ttl time.Duration) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	s.Require().NoError(err)
	return signed
}

func (s *AppSuite) do(app *fiber.App, req *http.Request) (int, envelope) {
	resp, err := app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var env envelope
	s.Require().NoError(json.Unmarshal(body, &env), "body: %s", body)
	return resp.StatusCode, env
}

func (s *AppSuite) jsonRequest(method, path, token string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func validSubmission() map[string]any {
	return map[string]any{
		"fullName":      "Jane Doe",
		"phone":         "+15551234567",
		"email":         "jane@example.com",
		"idType":        "passport",
		"idDescription": "Lost navy blue passport near the station",
	}
}

func (s *AppSuite) TestCreateReportCard() {
	tok := s.token("user-1", "jane@example.com", time.Hour)

	code, env := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, validSubmission()))
	s.Equal(http.StatusOK, code)
	s.True(env.Success)

	var card models.ReportCard
	s.Require().NoError(json.Unmarshal(env.Data, &card))
	s.NotEmpty(card.ID.String())
	s.Equal(models.StatusLost, card.Status)
	s.Equal("user-1", card.OwnerID)
	s.Nil(card.FileDescription)
}

func (s *AppSuite) TestCreateReportCardMissingField() {
	tok := s.token("user-1", "jane@example.com", time.Hour)
	body := validSubmission()
	delete(body, "idType")

	code, env := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, body))
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)
	s.Equal("Missing required fields", env.Error)
	s.Equal([]string{"idType"}, env.Details)
}

func (s *AppSuite) TestCreateReportCardInvalidBody() {
	tok := s.token("user-1", "jane@example.com", time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/report-cards", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	code, env := s.do(s.app, req)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid request body", env.Error)
}

func (s *AppSuite) TestCreateReportCardRepositoryFailure() {
	repo := new(failingCardRepo)
	repo.On("Create", "user-1").Return(&repository.Error{
		Kind: repository.KindUnavailable, Op: "create report card", Err: errors.New("dial tcp: refused"),
	})
	app := s.newApp(repo)

	tok := s.token("user-1", "jane@example.com", time.Hour)
	code, env := s.do(app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, validSubmission()))
	s.Equal(http.StatusInternalServerError, code)
	s.False(env.Success)
	s.Equal("Failed to create report card submission", env.Error)
	s.Equal([]string{"unavailable"}, env.Details)
	repo.AssertExpectations(s.T())
}

func (s *AppSuite) TestCreateReportCardRepositoryValidationFailure() {
	repo := new(failingCardRepo)
	repo.On("Create", "user-1").Return(&repository.Error{
		Kind: repository.KindValidationFailed, Op: "create report card", Err: errors.New("value too long"),
	})
	app := s.newApp(repo)

	tok := s.token("user-1", "jane@example.com", time.Hour)
	code, env := s.do(app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, validSubmission()))
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)
	s.Equal("Invalid report card fields", env.Error)
	s.Equal([]string{"validation_failed"}, env.Details)
	repo.AssertExpectations(s.T())
}

func (s *AppSuite) TestCreateReportCardOverlongField() {
	tok := s.token("user-1", "jane@example.com", time.Hour)
	body := validSubmission()
	body["phone"] = strings.Repeat("5", 51)

	code, env := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, body))
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid report card fields", env.Error)
	s.Equal([]string{"phone must be at most 50 characters"}, env.Details)

	_, env = s.do(s.app, s.jsonRequest(http.MethodGet, "/api/report-cards", tok, nil))
	s.JSONEq(`[]`, string(env.Data))
}

func (s *AppSuite) TestCreateFoundReportCard() {
	tok := s.token("user-1", "jane@example.com", time.Hour)

	code, env := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards/found", tok, validSubmission()))
	s.Require().Equal(http.StatusOK, code, env.Error)
	var card models.ReportCard
	s.Require().NoError(json.Unmarshal(env.Data, &card))
	s.Equal(models.StatusFound, card.Status)
	s.Equal("user-1", card.OwnerID)

	body := validSubmission()
	delete(body, "phone")
	code, env = s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards/found", tok, body))
	s.Equal(http.StatusBadRequest, code)
	s.Equal([]string{"phone"}, env.Details)

	code, _ = s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards/found", "", validSubmission()))
	s.Equal(http.StatusUnauthorized, code)
}

func (s *AppSuite) TestUpdateReportCardStatus() {
	alice := s.token("alice", "alice@example.com", time.Hour)
	bob := s.token("bob", "bob@example.com", time.Hour)

	_, env := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", alice, validSubmission()))
	var card models.ReportCard
	s.Require().NoError(json.Unmarshal(env.Data, &card))
	path := "/api/report-cards/" + card.ID.String() + "/status"

	code, env := s.do(s.app, s.jsonRequest(http.MethodPatch, path, bob, map[string]string{"status": "resolved"}))
	s.Equal(http.StatusNotFound, code)
	s.Equal("Report card not found", env.Error)

	code, env = s.do(s.app, s.jsonRequest(http.MethodPatch, path, alice, map[string]string{"status": "archived"}))
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid report card status", env.Error)

	code, _ = s.do(s.app, s.jsonRequest(http.MethodPatch, "/api/report-cards/not-a-uuid/status", alice, map[string]string{"status": "found"}))
	s.Equal(http.StatusBadRequest, code)

	code, env = s.do(s.app, s.jsonRequest(http.MethodPatch, path, alice, map[string]string{"status": "resolved"}))
	s.Require().Equal(http.StatusOK, code, env.Error)
	var updated models.ReportCard
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal(card.ID, updated.ID)
	s.Equal(models.StatusResolved, updated.Status)

	_, env = s.do(s.app, s.jsonRequest(http.MethodGet, "/api/report-cards/stats", alice, nil))
	s.JSONEq(`{"cardsReported":0,"cardsFound":0,"cardsResolved":1}`, string(env.Data))
}

func (s *AppSuite) TestListRequiresAuth() {
	code, env := s.do(s.app, s.jsonRequest(http.MethodGet, "/api/report-cards", "", nil))
	s.Equal(http.StatusUnauthorized, code)
	s.False(env.Success)
	s.NotEmpty(env.Error)
}

func (s *AppSuite) TestRejectedTokens() {
	expired := s.token("user-1", "jane@example.com", -time.Minute)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "email": "jane@example.com", "exp": time.Now().Add(time.Hour).Unix(),
	})
	forged, err := otherKey.SignedString([]byte("some-other-secret"))
	s.Require().NoError(err)

	for name, header := range map[string]string{
		"expired":          "Bearer " + expired,
		"wrong secret":     "Bearer " + forged,
		"two segments":     "Bearer abc.def",
		"missing prefix":   expired,
		"empty bearer":     "Bearer ",
		"basic credential": "Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/report-cards", nil)
		req.Header.Set("Authorization", header)
		code, env := s.do(s.app, req)
		s.Equal(http.StatusUnauthorized, code, name)
		s.Equal("Authentication required", env.Error, name)
	}
}

func (s *AppSuite) TestListOwnCardsOnly() {
	alice := s.token("alice", "alice@example.com", time.Hour)
	bob := s.token("bob", "bob@example.com", time.Hour)

	for i := 0; i < 2; i++ {
		code, _ := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", alice, validSubmission()))
		s.Require().Equal(http.StatusOK, code)
	}
	code, _ := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", bob, validSubmission()))
	s.Require().Equal(http.StatusOK, code)

	code, env := s.do(s.app, s.jsonRequest(http.MethodGet, "/api/report-cards", alice, nil))
	s.Equal(http.StatusOK, code)
	var cards []models.ReportCard
	s.Require().NoError(json.Unmarshal(env.Data, &cards))
	s.Len(cards, 2)
	for _, c := range cards {
		s.Equal("alice", c.OwnerID)
	}
}

func (s *AppSuite) TestListDegradesOnRepositoryFailure() {
	repo := new(failingCardRepo)
	repo.On("ListByOwner", "user-1").Return(&repository.Error{
		Kind: repository.KindUnavailable, Op: "list report cards", Err: errors.New("timeout"),
	})
	app := s.newApp(repo)

	tok := s.token("user-1", "jane@example.com", time.Hour)
	code, env := s.do(app, s.jsonRequest(http.MethodGet, "/api/report-cards", tok, nil))
	s.Equal(http.StatusOK, code)
	s.True(env.Success)
	s.JSONEq(`[]`, string(env.Data))
	s.Equal(handlers.ListUnavailableWarning, env.Warning)
}

func (s *AppSuite) TestStats() {
	tok := s.token("alice", "alice@example.com", time.Hour)
	code, _ := s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards/found", tok, validSubmission()))
	s.Require().Equal(http.StatusOK, code)
	code, _ = s.do(s.app, s.jsonRequest(http.MethodPost, "/api/report-cards", tok, validSubmission()))
	s.Require().Equal(http.StatusOK, code)

	code, env := s.do(s.app, s.jsonRequest(http.MethodGet, "/api/report-cards/stats", tok, nil))
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"cardsReported":1,"cardsFound":1,"cardsResolved":0}`, string(env.Data))
}

func (s *AppSuite) multipartRequest(token, filename, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *AppSuite) TestUpload() {
	tok := s.token("alice", "alice@example.com", time.Hour)

	code, env := s.do(s.app, s.multipartRequest(tok, "front side.png", "image/png", []byte("png-bytes")))
	s.Require().Equal(http.StatusOK, code, env.Error)

	var out struct {
		FileURL string `json:"fileUrl"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &out))
	s.True(strings.HasPrefix(out.FileURL, "http://localhost/files/report-cards/alice_"))
	s.True(strings.HasSuffix(out.FileURL, "_front_side.png"))
	s.Equal(1, s.store.Len())

	key := strings.TrimPrefix(out.FileURL, "http://localhost/files/")
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/files/"+key, nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("png-bytes", string(data))
	s.Equal("image/png", resp.Header.Get("Content-Type"))
}

func (s *AppSuite) TestUploadRejections() {
	tok := s.token("alice", "alice@example.com", time.Hour)

	code, env := s.do(s.app, s.multipartRequest(tok, "notes.txt", "text/plain", []byte("hello")))
	s.Equal(http.StatusBadRequest, code)
	s.Contains(env.Error, "Invalid file type")

	big := bytes.Repeat([]byte("a"), int(s.cfg.UploadMaxBytes)+1)
	code, env = s.do(s.app, s.multipartRequest(tok, "big.txt", "text/plain", big))
	s.Equal(http.StatusBadRequest, code)
	s.Contains(env.Error, "too large")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+tok)
	code, env = s.do(s.app, req)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("No file provided", env.Error)

	code, _ = s.do(s.app, s.multipartRequest("", "a.png", "image/png", []byte("x")))
	s.Equal(http.StatusUnauthorized, code)
	s.Zero(s.store.Len())
}

func (s *AppSuite) TestProfile() {
	tok := s.token("alice", "alice@example.com", time.Hour)

	code, env := s.do(s.app, s.jsonRequest(http.MethodGet, "/api/profile", tok, nil))
	s.Require().Equal(http.StatusOK, code)
	var profile models.UserProfile
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("alice", profile.Name)
	s.Equal("Not specified", profile.Occupation)
	s.Empty(env.Warning)

	code, env = s.do(s.app, s.jsonRequest(http.MethodPut, "/api/profile", tok, map[string]any{
		"bio":         "Finds lost things",
		"socialLinks": map[string]any{"github": "https://github.com/alice"},
	}))
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("Finds lost things", profile.Bio)
	s.Equal("Not specified", profile.Occupation)
	s.Equal("https://github.com/alice", profile.SocialLinks.Data().GitHub)
}

func (s *AppSuite) TestProfileUpdateValidation() {
	tok := s.token("alice", "alice@example.com", time.Hour)

	code, env := s.do(s.app, s.jsonRequest(http.MethodPut, "/api/profile", tok, map[string]any{
		"name":        "A",
		"phone":       "call me maybe",
		"bio":         strings.Repeat("b", 501),
		"socialLinks": map[string]any{"linkedin": "not a url"},
	}))
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)
	s.Equal("Invalid profile fields", env.Error)
	s.Equal([]string{
		"name must be at least 2 characters",
		"phone must be a valid phone number",
		"bio must be at most 500 characters",
		"socialLinks.linkedin must be a valid URL",
	}, env.Details)

	code, env = s.do(s.app, s.jsonRequest(http.MethodGet, "/api/profile", tok, nil))
	s.Require().Equal(http.StatusOK, code)
	var profile models.UserProfile
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("alice", profile.Name, "rejected patch is not applied")
}

func (s *AppSuite) TestHealth() {
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var health map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&health))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", health["status"])
	s.Equal("ok", health["db"])
	s.Equal("ok", health["storage"])
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
	s.Equal("nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func (s *AppSuite) TestHealthHidesDependencyErrors() {
	app := New(s.cfg, Deps{
		Authenticator: auth.NewAuthenticator(auth.NewSecretDecoder([]byte(testSecret)), nil),
		ReportCards:   s.repo,
		Profiles:      s.repo,
		DB: pingerFunc(func(context.Context) error {
			return errors.New("dial tcp 10.0.0.5:5432: password authentication failed for user admin")
		}),
		Store: s.store,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var health map[string]string
	s.Require().NoError(json.Unmarshal(body, &health))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("degraded", health["status"])
	s.Equal("unhealthy", health["db"])
	s.Equal("ok", health["storage"])
	s.NotContains(string(body), "10.0.0.5")
	s.NotContains(string(body), "password")
}

func (s *AppSuite) TestUnknownRouteUsesEnvelope() {
	code, env := s.do(s.app, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	s.Equal(http.StatusNotFound, code)
	s.False(env.Success)
	s.NotEmpty(env.Error)
}

func TestErrorHandler_MasksServerErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password is hunter2") })
	app.Get("/big", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotContains(t, string(body), "hunter2")
	require.Contains(t, string(body), "Internal server error")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/big", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
