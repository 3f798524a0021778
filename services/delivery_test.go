package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oficinapro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// fakeConfigStore serves a single owner's delivery config and profile.
type fakeConfigStore struct {
	config  *models.DeliveryConfig
	profile *models.CompanyProfile
}

func (s *fakeConfigStore) DeliveryConfig(ownerID uuid.UUID) (*models.DeliveryConfig, error) {
	if s.config == nil {
		return nil, ErrNotFound
	}
	return s.config, nil
}

func (s *fakeConfigStore) CompanyProfile(ownerID uuid.UUID) (*models.CompanyProfile, error) {
	if s.profile == nil {
		return nil, ErrNotFound
	}
	return s.profile, nil
}

type fakeSMS struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeSMS) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &twilioApi.ApiV2010Message{}, nil
}

func newTestChannel(store ConfigStore) *DeliveryChannel {
	return &DeliveryChannel{
		store:  store,
		cache:  NewResultCache(DefaultCacheTTL),
		client: &http.Client{Timeout: 5 * time.Second},
		sms:    &fakeSMS{},
	}
}

func TestSendWebhook(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &fakeConfigStore{config: &models.DeliveryConfig{
		Method:       MethodWebhook,
		WebhookURL:   server.URL + "/message/{instance}",
		APIKey:       "secret-token",
		InstanceName: "principal",
	}}
	channel := newTestChannel(store)

	receipt, err := channel.Send(uuid.New(), "(11) 99999-9999", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, MethodWebhook, receipt.Channel)
	assert.Empty(t, receipt.DeepLink)

	assert.Equal(t, "/message/principal", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	var payload struct {
		Number      string `json:"number"`
		TextMessage struct {
			Text string `json:"text"`
		} `json:"textMessage"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "5511999999999", payload.Number)
	assert.Equal(t, "Olá!", payload.TextMessage.Text)
}

func TestSendWebhookFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("instance offline"))
	}))
	defer server.Close()

	store := &fakeConfigStore{config: &models.DeliveryConfig{
		Method:     MethodWebhook,
		WebhookURL: server.URL,
	}}
	channel := newTestChannel(store)

	_, err := channel.Send(uuid.New(), "11999999999", "Olá!")
	require.Error(t, err)

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusBadGateway, deliveryErr.StatusCode)
	assert.Equal(t, "instance offline", deliveryErr.Body)
}

func TestSendDirectBuildsDeepLink(t *testing.T) {
	store := &fakeConfigStore{config: &models.DeliveryConfig{Method: MethodDirect}}
	channel := newTestChannel(store)

	receipt, err := channel.Send(uuid.New(), "(11) 98888-7777", "Olá João!")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, receipt.Channel)
	assert.Equal(t, "https://wa.me/5511988887777?text=Ol%C3%A1+Jo%C3%A3o%21", receipt.DeepLink)
}

func TestSendDefaultsToDirectWhenUnconfigured(t *testing.T) {
	channel := newTestChannel(&fakeConfigStore{})

	receipt, err := channel.Send(uuid.New(), "11999999999", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, receipt.Channel)
	assert.Contains(t, receipt.DeepLink, "wa.me/5511999999999")
}

func TestSendWebhookWithoutURLFallsBackToDirect(t *testing.T) {
	store := &fakeConfigStore{config: &models.DeliveryConfig{Method: MethodWebhook}}
	channel := newTestChannel(store)

	receipt, err := channel.Send(uuid.New(), "11999999999", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, receipt.Channel)
}

func TestSendSMS(t *testing.T) {
	store := &fakeConfigStore{config: &models.DeliveryConfig{
		Method:  MethodSMS,
		SMSFrom: "+15005550006",
	}}
	channel := newTestChannel(store)
	sms := &fakeSMS{}
	channel.sms = sms

	receipt, err := channel.Send(uuid.New(), "(11) 97777-6666", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, MethodSMS, receipt.Channel)

	require.NotNil(t, sms.params)
	require.NotNil(t, sms.params.To)
	assert.Equal(t, "+5511977776666", *sms.params.To)
	require.NotNil(t, sms.params.From)
	assert.Equal(t, "+15005550006", *sms.params.From)
	require.NotNil(t, sms.params.Body)
	assert.Equal(t, "Olá!", *sms.params.Body)
}

func TestLoadConfigCaches(t *testing.T) {
	store := &fakeConfigStore{config: &models.DeliveryConfig{Method: MethodDirect}}
	channel := newTestChannel(store)
	owner := uuid.New()

	first, err := channel.LoadConfig(owner)
	require.NoError(t, err)

	// Mutating the store has no effect until the cache entry is dropped.
	store.config = &models.DeliveryConfig{Method: MethodWebhook, WebhookURL: "https://example.com"}
	second, err := channel.LoadConfig(owner)
	require.NoError(t, err)
	assert.Equal(t, first.Method, second.Method)

	channel.cache.Invalidate("delivery_config:" + owner.String())
	third, err := channel.LoadConfig(owner)
	require.NoError(t, err)
	assert.Equal(t, MethodWebhook, third.Method)
}

func TestLoadCompanyProfileDefault(t *testing.T) {
	channel := newTestChannel(&fakeConfigStore{})

	profile, err := channel.LoadCompanyProfile(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Nossa Oficina", profile.Name)
}

func TestBrazilianNumber(t *testing.T) {
	assert.Equal(t, "5511999999999", brazilianNumber("(11) 99999-9999"))
	assert.Equal(t, "5511999999999", brazilianNumber("11 99999 9999"))
	assert.Equal(t, "5511999999999", brazilianNumber("11999999999"))
}
