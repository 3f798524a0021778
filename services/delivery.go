// services/delivery.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"oficinapro-backend/models"
	"oficinapro-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ConfigStore reads the stored delivery configuration and company profile.
type ConfigStore interface {
	DeliveryConfig(ownerID uuid.UUID) (*models.DeliveryConfig, error)
	CompanyProfile(ownerID uuid.UUID) (*models.CompanyProfile, error)
}

// smsAPI is the slice of the Twilio client the channel needs.
type smsAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Delivery methods.
const (
	MethodDirect  = "direct"
	MethodWebhook = "webhook"
	MethodSMS     = "sms"
)

// DeliveryReceipt describes how a message left the system. The direct
// strategy performs no I/O; it hands back a deep link for a human operator.
type DeliveryReceipt struct {
	Channel  string
	DeepLink string
}

// DeliveryChannel sends a rendered message to a phone number using the
// owner's configured strategy.
type DeliveryChannel struct {
	store  ConfigStore
	cache  *ResultCache
	client *http.Client
	sms    smsAPI
}

func NewDeliveryChannel(store ConfigStore, cache *ResultCache) *DeliveryChannel {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	twilioClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &DeliveryChannel{
		store:  store,
		cache:  cache,
		client: &http.Client{Timeout: 30 * time.Second},
		sms:    twilioClient.Api,
	}
}

// LoadConfig returns the owner's delivery configuration, defaulting to the
// direct method when nothing is stored or no owner is given.
func (d *DeliveryChannel) LoadConfig(ownerID uuid.UUID) (*models.DeliveryConfig, error) {
	return cacheLookup(d.cache, "delivery_config:"+ownerID.String(), func() (*models.DeliveryConfig, error) {
		if ownerID == uuid.Nil {
			return defaultDeliveryConfig(), nil
		}
		config, err := d.store.DeliveryConfig(ownerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthenticated) {
				return defaultDeliveryConfig(), nil
			}
			return nil, err
		}
		return config, nil
	})
}

// LoadCompanyProfile returns the owner's company profile, falling back to a
// generic identity.
func (d *DeliveryChannel) LoadCompanyProfile(ownerID uuid.UUID) (*models.CompanyProfile, error) {
	return cacheLookup(d.cache, "company_profile:"+ownerID.String(), func() (*models.CompanyProfile, error) {
		if ownerID == uuid.Nil {
			return defaultCompanyProfile(), nil
		}
		profile, err := d.store.CompanyProfile(ownerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthenticated) {
				return defaultCompanyProfile(), nil
			}
			return nil, err
		}
		return profile, nil
	})
}

func defaultDeliveryConfig() *models.DeliveryConfig {
	return &models.DeliveryConfig{Method: MethodDirect}
}

func defaultCompanyProfile() *models.CompanyProfile {
	return &models.CompanyProfile{
		Name:  "Nossa Oficina",
		Hours: "09:00 às 18:00",
		Days:  "Segunda a Sexta",
	}
}

// Send dispatches the message through the configured strategy. Failures
// propagate to the caller, which counts them; there is no internal retry.
func (d *DeliveryChannel) Send(ownerID uuid.UUID, phone, message string) (*DeliveryReceipt, error) {
	config, err := d.LoadConfig(ownerID)
	if err != nil {
		return nil, err
	}

	switch {
	case config.Method == MethodWebhook && config.WebhookURL != "":
		if err := d.sendWebhook(config, phone, message); err != nil {
			return nil, err
		}
		return &DeliveryReceipt{Channel: MethodWebhook}, nil
	case config.Method == MethodSMS:
		if err := d.sendSMS(config, phone, message); err != nil {
			return nil, err
		}
		return &DeliveryReceipt{Channel: MethodSMS}, nil
	default:
		return d.sendDirect(phone, message)
	}
}

type webhookPayload struct {
	Number      string `json:"number"`
	TextMessage struct {
		Text string `json:"text"`
	} `json:"textMessage"`
}

func (d *DeliveryChannel) sendWebhook(config *models.DeliveryConfig, phone, message string) error {
	payload := webhookPayload{Number: brazilianNumber(phone)}
	payload.TextMessage.Text = message

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := config.WebhookURL
	if config.InstanceName != "" {
		endpoint = strings.ReplaceAll(endpoint, "{instance}", config.InstanceName)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+config.APIKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		responseBody, _ := io.ReadAll(resp.Body)
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}
	return nil
}

// sendDirect builds a WhatsApp deep link for a human operator to open. It
// always succeeds once the URL is constructed.
func (d *DeliveryChannel) sendDirect(phone, message string) (*DeliveryReceipt, error) {
	link := "https://wa.me/" + brazilianNumber(phone) + "?text=" + url.QueryEscape(message)
	return &DeliveryReceipt{Channel: MethodDirect, DeepLink: link}, nil
}

func (d *DeliveryChannel) sendSMS(config *models.DeliveryConfig, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + brazilianNumber(phone))
	params.SetBody(message)

	from := config.SMSFrom
	if from == "" {
		from = os.Getenv("TWILIO_PHONE_NUMBER")
	}
	params.SetFrom(from)

	_, err := d.sms.CreateMessage(params)
	return err
}

// brazilianNumber strips formatting and prefixes the country code.
func brazilianNumber(phone string) string {
	return "55" + utils.DigitsOnly(phone)
}
