// internal/router/router_test.go
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/handlers"
	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/logging"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/storage"
)

// Every request gets its own client address so the shared rate limiters
// never trip across tests.
var clientSeq uint32

// apiResponse is the decoded envelope. Object payloads land in Data and
// paginated list payloads in Items.
type apiResponse struct {
	Success bool            `json:"success"`
	Raw     json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`

	Data  map[string]interface{} `json:"-"`
	Items []interface{}          `json:"-"`
}

func (r *apiResponse) decodeData() error {
	raw := bytes.TrimSpace(r.Raw)
	switch {
	case bytes.HasPrefix(raw, []byte("{")):
		return json.Unmarshal(raw, &r.Data)
	case bytes.HasPrefix(raw, []byte("[")):
		return json.Unmarshal(raw, &r.Items)
	}
	return nil
}

type APITestSuite struct {
	suite.Suite
	cfg    *config.Config
	market *services.Marketplace
	router *gin.Engine
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize())
}

func (suite *APITestSuite) SetupTest() {
	suite.cfg = &config.Config{
		Environment: "test",
		Storage:     config.StorageConfig{Driver: "memory"},
		Blob:        config.BlobConfig{Driver: "memory", MaxSize: 1024 * 1024},
		Session:     config.SessionConfig{SecretKey: "router-test-secret", TTLHours: 1},
		Market: config.MarketConfig{
			StarterRub:           10000,
			StarterUsd:           100,
			PlayThresholdSeconds: 30,
			DefaultVolume:        0.7,
			BcryptCost:           bcrypt.MinCost,
			SeedDemoData:         true,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	suite.market = services.NewMarketplace(suite.cfg, storage.NewMemoryStore(), blobstore.NewMemoryStore(), logging.Discard())
	require.NoError(suite.T(), suite.market.Bootstrap(context.Background()))
	suite.router = Initialize(suite.market, suite.cfg, logging.Discard())
}

func (suite *APITestSuite) send(req *http.Request, token string) (*httptest.ResponseRecorder, apiResponse) {
	n := atomic.AddUint32(&clientSeq, 1)
	req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:40000", (n>>16)&0xff, (n>>8)&0xff, n&0xff)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response apiResponse
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
		require.NoError(suite.T(), response.decodeData())
	}
	return w, response
}

func (suite *APITestSuite) request(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, apiResponse) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return suite.send(req, token)
}

func (suite *APITestSuite) login(email, password string) string {
	w, response := suite.request(http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	return response.Data["token"].(string)
}

func (suite *APITestSuite) createBeat(token, title string, rub, usd int) string {
	w, response := suite.request(http.MethodPost, "/v1/beats", map[string]interface{}{
		"title":    title,
		"priceRub": rub,
		"priceUsd": usd,
		"genre":    "Trap",
		"tags":     []string{"dark"},
		"bpm":      140,
		"key":      "Am",
		"audioUrl": "https://cdn.example.com/" + title + ".mp3",
	}, token)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return response.Data["beat"].(map[string]interface{})["id"].(string)
}

func (suite *APITestSuite) wallet(userID string) (decimal.Decimal, decimal.Decimal) {
	user, err := suite.market.Identity.FindUserByID(userID)
	require.NoError(suite.T(), err)
	return user.WalletRub, user.WalletUsd
}

func (suite *APITestSuite) TestHealth() {
	w, _ := suite.request(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "healthy")
}

func (suite *APITestSuite) TestRegisterAndProfile() {
	w, response := suite.request(http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "new@beatmarket.ru",
		"password": "secret1",
		"name":     "Newcomer",
		"role":     "buyer",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	assert.True(suite.T(), response.Success)
	token := response.Data["token"].(string)
	user := response.Data["user"].(map[string]interface{})
	assert.NotContains(suite.T(), user, "passwordHash")

	w, response = suite.request(http.MethodGet, "/v1/auth/me", nil, token)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Newcomer", response.Data["user"].(map[string]interface{})["name"])

	rub, usd := suite.wallet(user["id"].(string))
	assert.True(suite.T(), rub.Equal(decimal.NewFromInt(10000)))
	assert.True(suite.T(), usd.Equal(decimal.NewFromInt(100)))

	w, response = suite.request(http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "NEW@beatmarket.ru",
		"password": "secret1",
		"name":     "Again",
		"role":     "buyer",
	}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", response.Error.Code)
}

func (suite *APITestSuite) TestRegisterRejectsAdminRole() {
	w, response := suite.request(http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "boss@beatmarket.ru",
		"password": "secret1",
		"name":     "Boss",
		"role":     "admin",
	}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", response.Error.Code)
}

func (suite *APITestSuite) TestSessionRequired() {
	w, response := suite.request(http.MethodGet, "/v1/auth/me", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "UNAUTHORIZED", response.Error.Code)

	w, _ = suite.request(http.MethodGet, "/v1/auth/me", nil, "garbage")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    "artist@beatmarket.ru",
		"password": "wrong-password",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestNewLoginReplacesSession() {
	first := suite.login("artist@beatmarket.ru", "buyer123")
	second := suite.login("producer@beatmarket.ru", "seller123")

	w, response := suite.request(http.MethodGet, "/v1/auth/me", nil, first)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), i18n.T("en", i18n.KeyAuthSessionMismatch), response.Error.Message)

	w, _ = suite.request(http.MethodGet, "/v1/auth/me", nil, second)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/auth/logout", nil, second)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodGet, "/v1/auth/me", nil, second)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestOnlySellersCreateBeats() {
	token := suite.login("artist@beatmarket.ru", "buyer123")
	w, response := suite.request(http.MethodPost, "/v1/beats", map[string]interface{}{
		"title":    "Nope",
		"priceRub": 100,
		"genre":    "Trap",
		"bpm":      90,
		"key":      "C",
		"audioUrl": "https://cdn.example.com/nope.mp3",
	}, token)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "FORBIDDEN", response.Error.Code)
}

func (suite *APITestSuite) TestBeatLifecycle() {
	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Night", 2500, 25)

	w, response := suite.request(http.MethodGet, "/v1/beats?search=night", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(1), response.Meta["pagination"].(map[string]interface{})["total"])
	require.Len(suite.T(), response.Items, 1)
	assert.Equal(suite.T(), beatID, response.Items[0].(map[string]interface{})["id"])

	w, response = suite.request(http.MethodPut, "/v1/beats/"+beatID, map[string]interface{}{
		"title": "Night Drive",
	}, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), "Night Drive", response.Data["beat"].(map[string]interface{})["title"])

	other := suite.login("soundwave@beatmarket.ru", "seller123")
	w, _ = suite.request(http.MethodDelete, "/v1/beats/"+beatID, nil, other)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	admin := suite.login("admin@beatmarket.ru", "admin123")
	w, _ = suite.request(http.MethodDelete, "/v1/beats/"+beatID, nil, admin)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, response = suite.request(http.MethodGet, "/v1/beats/"+beatID, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "NOT_FOUND", response.Error.Code)
}

func (suite *APITestSuite) TestNotFoundIsLocalized() {
	req := httptest.NewRequest(http.MethodGet, "/v1/beats/missing", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	w, response := suite.send(req, "")

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), i18n.T("ru", i18n.KeyBeatNotFound), response.Error.Message)
}

func (suite *APITestSuite) TestRateAndFavorite() {
	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Rated", 1000, 10)

	buyer := suite.login("artist@beatmarket.ru", "buyer123")
	w, _ := suite.request(http.MethodPost, "/v1/beats/"+beatID+"/rating", map[string]int{"rating": 6}, buyer)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, response := suite.request(http.MethodPost, "/v1/beats/"+beatID+"/rating", map[string]int{"rating": 4}, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Equal(suite.T(), float64(4), response.Data["beat"].(map[string]interface{})["rating"])

	w, _ = suite.request(http.MethodPost, "/v1/beats/"+beatID+"/favorite", nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, response = suite.request(http.MethodGet, "/v1/me/favorites", nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response.Data["beats"], 1)

	w, response = suite.request(http.MethodGet, "/v1/beats/"+beatID, nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, response.Data["is_favorite"])
	assert.Equal(suite.T(), float64(4), response.Data["user_rating"])
}

func (suite *APITestSuite) TestCheckout() {
	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Cheap", 2500, 25)
	priceyID := suite.createBeat(seller, "Pricey", 20000, 200)
	sellerRub, _ := suite.wallet("seller-1")

	buyer := suite.login("artist@beatmarket.ru", "buyer123")
	w, _ := suite.request(http.MethodPost, "/v1/cart", map[string]string{"beatId": "ghost"}, buyer)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/cart/checkout", map[string]string{"currency": "RUB"}, buyer)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/cart", map[string]string{"beatId": priceyID}, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, response := suite.request(http.MethodPost, "/v1/cart/checkout", map[string]string{"currency": "RUB"}, buyer)
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)
	assert.Equal(suite.T(), "INSUFFICIENT_FUNDS", response.Error.Code)

	w, _ = suite.request(http.MethodDelete, "/v1/cart/"+priceyID, nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPost, "/v1/cart", map[string]string{"beatId": beatID}, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, response = suite.request(http.MethodPost, "/v1/cart/checkout", map[string]string{"currency": "RUB"}, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.Len(suite.T(), response.Data["purchases"], 1)

	buyerRub, buyerUsd := suite.wallet("buyer-1")
	assert.True(suite.T(), buyerRub.Equal(decimal.NewFromInt(7500)))
	assert.True(suite.T(), buyerUsd.Equal(decimal.NewFromInt(150)))
	afterRub, _ := suite.wallet("seller-1")
	assert.True(suite.T(), afterRub.Equal(sellerRub.Add(decimal.NewFromInt(2500))))

	w, response = suite.request(http.MethodGet, "/v1/me/purchases", nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), response.Data["purchases"], 1)

	w, response = suite.request(http.MethodGet, "/v1/cart", nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), response.Data["items"])

	w, _ = suite.request(http.MethodPost, "/v1/cart/checkout", map[string]string{"currency": "EUR"}, buyer)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestFriendshipAndNotifications() {
	buyer := suite.login("artist@beatmarket.ru", "buyer123")
	w, response := suite.request(http.MethodPost, "/v1/friends", map[string]string{"friendId": "seller-1"}, buyer)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	edgeID := response.Data["friend"].(map[string]interface{})["id"].(string)

	w, _ = suite.request(http.MethodPut, "/v1/friends/"+edgeID+"/accept", nil, buyer)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	seller := suite.login("producer@beatmarket.ru", "seller123")
	w, response = suite.request(http.MethodGet, "/v1/notifications?unread=true", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	notifications := response.Data["notifications"].([]interface{})
	require.Len(suite.T(), notifications, 1)
	notificationID := notifications[0].(map[string]interface{})["id"].(string)

	w, _ = suite.request(http.MethodPut, "/v1/friends/"+edgeID+"/accept", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, response = suite.request(http.MethodPut, "/v1/notifications/"+notificationID+"/read", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(0), response.Data["unread_count"])

	w, response = suite.request(http.MethodGet, "/v1/friends", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	friends := response.Data["friends"].([]interface{})
	require.Len(suite.T(), friends, 1)
	counterpart := friends[0].(map[string]interface{})["counterpart"].(map[string]interface{})
	assert.Equal(suite.T(), "Young Artist", counterpart["name"])
	assert.NotContains(suite.T(), counterpart, "email")

	buyer = suite.login("artist@beatmarket.ru", "buyer123")
	w, response = suite.request(http.MethodGet, "/v1/notifications", nil, buyer)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(1), response.Data["unread_count"])

	w, _ = suite.request(http.MethodDelete, "/v1/notifications/"+notificationID, nil, buyer)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestNews() {
	w, response := suite.request(http.MethodGet, "/v1/news?limit=2", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), float64(4), response.Meta["pagination"].(map[string]interface{})["total"])
	assert.Equal(suite.T(), "4", w.Header().Get("X-Total-Count"))
	assert.Len(suite.T(), response.Items, 2)

	buyer := suite.login("artist@beatmarket.ru", "buyer123")
	body := map[string]string{
		"title":       "Winter sale",
		"description": "Everything is cheaper",
		"category":    "News",
	}
	w, response = suite.request(http.MethodPost, "/v1/admin/news", body, buyer)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), i18n.T("en", i18n.KeyAdminAccessOnly), response.Error.Message)

	admin := suite.login("admin@beatmarket.ru", "admin123")
	w, response = suite.request(http.MethodPost, "/v1/admin/news", body, admin)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	newsID := response.Data["news"].(map[string]interface{})["id"].(string)

	w, _ = suite.request(http.MethodPut, "/v1/admin/news/missing", map[string]string{"title": "x"}, admin)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, _ = suite.request(http.MethodDelete, "/v1/admin/news/"+newsID, nil, admin)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodGet, "/v1/news/"+newsID, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestAdminAdjustsWallet() {
	admin := suite.login("admin@beatmarket.ru", "admin123")
	w, _ := suite.request(http.MethodPut, "/v1/admin/users/buyer-1/wallet", map[string]interface{}{
		"rub": -500,
		"usd": 25,
	}, admin)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	rub, usd := suite.wallet("buyer-1")
	assert.True(suite.T(), rub.Equal(decimal.NewFromInt(9500)))
	assert.True(suite.T(), usd.Equal(decimal.NewFromInt(175)))

	w, _ = suite.request(http.MethodPut, "/v1/admin/users/ghost/wallet", map[string]interface{}{"rub": 1}, admin)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestPlayer() {
	w, _ := suite.request(http.MethodPost, "/v1/player/pause", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Loop", 500, 5)

	w, response := suite.request(http.MethodPost, "/v1/player/play", map[string]string{"beatId": beatID}, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	state := response.Data["state"].(map[string]interface{})
	assert.Equal(suite.T(), "playing", state["status"])
	assert.Equal(suite.T(), "https://cdn.example.com/Loop.mp3", state["source"])

	w, _ = suite.request(http.MethodPost, "/v1/player/duration", map[string]float64{"value": 120}, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, response = suite.request(http.MethodPost, "/v1/player/position", map[string]float64{"value": 31}, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, response.Data["state"].(map[string]interface{})["counted"])

	beat, err := suite.market.Catalog.GetBeat(beatID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, beat.Plays)

	w, _ = suite.request(http.MethodPost, "/v1/player/seek", nil, seller)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	w, _ = suite.request(http.MethodPost, "/v1/player/dance", nil, seller)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	w, _ = suite.request(http.MethodPost, "/v1/player/play", map[string]string{"beatId": "ghost"}, seller)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w, _ = suite.request(http.MethodPost, "/v1/auth/logout", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), services.PlayerIdle, suite.market.Playback.State().Status)
}

func (suite *APITestSuite) TestUploadAndStream() {
	seller := suite.login("producer@beatmarket.ru", "seller123")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(suite.T(), form.WriteField("data", `{"title":"Upload","priceRub":900,"genre":"Lo-Fi","bpm":80,"key":"F#m"}`))
	part, err := form.CreateFormFile("audio", "upload.mp3")
	require.NoError(suite.T(), err)
	_, err = part.Write([]byte("ID3-audio-bytes"))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/beats", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w, response := suite.send(req, seller)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	beatID := response.Data["beat"].(map[string]interface{})["id"].(string)

	w, _ = suite.request(http.MethodGet, "/v1/beats/"+beatID+"/audio", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "ID3-audio-bytes", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/beats/"+beatID+"/audio", nil)
	req.Header.Set("Range", "bytes=0-2")
	w, _ = suite.send(req, "")
	assert.Equal(suite.T(), http.StatusPartialContent, w.Code)
	assert.Equal(suite.T(), "ID3", w.Body.String())

	w, _ = suite.request(http.MethodGet, "/v1/beats/"+beatID+"/wav", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestRemoteAudioRedirects() {
	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Remote", 500, 5)

	w, _ := suite.request(http.MethodGet, "/v1/beats/"+beatID+"/audio", nil, "")
	assert.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "https://cdn.example.com/Remote.mp3", w.Header().Get("Location"))
}

func (suite *APITestSuite) TestRejectsUnsupportedUpload() {
	seller := suite.login("producer@beatmarket.ru", "seller123")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(suite.T(), form.WriteField("data", `{"title":"Bad","priceRub":900,"genre":"Lo-Fi","bpm":80,"key":"C"}`))
	part, err := form.CreateFormFile("audio", "virus.exe")
	require.NoError(suite.T(), err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/beats", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w, response := suite.send(req, seller)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), i18n.T("en", i18n.KeyFileUnsupported), response.Error.Message)
}

func (suite *APITestSuite) TestPlayerWebSocket() {
	seller := suite.login("producer@beatmarket.ru", "seller123")
	beatID := suite.createBeat(seller, "Socket", 500, 5)

	server := httptest.NewServer(suite.router)
	defer server.Close()
	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/player/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(suite.T(), err)
	require.NotNil(suite.T(), resp)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+seller, nil)
	require.NoError(suite.T(), err)
	defer conn.Close()

	var msg handlers.PlayerMessage
	require.NoError(suite.T(), conn.ReadJSON(&msg))
	assert.True(suite.T(), msg.Success)
	assert.Equal(suite.T(), services.PlayerIdle, msg.State.Status)

	require.NoError(suite.T(), conn.WriteJSON(handlers.PlayerCommand{Action: "play", BeatID: beatID}))
	require.NoError(suite.T(), conn.ReadJSON(&msg))
	assert.True(suite.T(), msg.Success)
	assert.Equal(suite.T(), services.PlayerPlaying, msg.State.Status)
	assert.Equal(suite.T(), beatID, msg.State.BeatID)

	volume := 1.5
	require.NoError(suite.T(), conn.WriteJSON(handlers.PlayerCommand{Action: "volume", Value: &volume}))
	require.NoError(suite.T(), conn.ReadJSON(&msg))
	assert.Equal(suite.T(), 1.0, msg.State.Volume)

	require.NoError(suite.T(), conn.WriteJSON(handlers.PlayerCommand{Action: "rewind"}))
	require.NoError(suite.T(), conn.ReadJSON(&msg))
	assert.False(suite.T(), msg.Success)
	assert.NotEmpty(suite.T(), msg.Error)

	// Logging out over REST ends the channel's session.
	w, _ := suite.request(http.MethodPost, "/v1/auth/logout", nil, seller)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), conn.WriteJSON(handlers.PlayerCommand{Action: "toggle"}))
	require.NoError(suite.T(), conn.ReadJSON(&msg))
	assert.False(suite.T(), msg.Success)
	assert.Equal(suite.T(), services.PlayerIdle, msg.State.Status)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
