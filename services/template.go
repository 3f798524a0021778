// services/template.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"oficinapro-backend/models"
	"oficinapro-backend/utils"

	"github.com/google/uuid"
)

// TemplateStore resolves an owner's customized active template for a type.
type TemplateStore interface {
	ActiveTemplate(ownerID uuid.UUID, templateType string) (*models.MessageTemplate, error)
}

// FallbackPolicy decides what happens to a placeholder the renderer has no
// rule for.
type FallbackPolicy int

const (
	// FallbackKeep leaves the literal {placeholder} text in the output. This
	// matches the historical behavior customers rely on.
	FallbackKeep FallbackPolicy = iota
	// FallbackEmpty replaces unknown placeholders with an empty string.
	FallbackEmpty
)

// TemplateData carries the contextual values substituted into a message body.
// Pointer fields distinguish "absent" from zero.
type TemplateData struct {
	CustomerName   string
	InstrumentName string
	Brand          string
	ModelName      string
	OrderNumber    string
	Accessories    string
	Services       []string
	Problems       string

	TotalAmount    *float64
	PendingAmount  *float64
	EstimateAmount *float64
	PaymentMethod  string

	OrderDate        *time.Time
	DeliveryEstimate *time.Time
	Notes            string

	DaysReady            int
	LastServiceDate      *time.Time
	MonthsWithoutService int

	ReviewLink      string
	InstagramHandle string
}

// TemplateRenderer turns a named template plus contextual data into the final
// message text. Rendering is pure: the same inputs always yield the same
// string.
type TemplateRenderer struct {
	store  TemplateStore
	policy FallbackPolicy
}

func NewTemplateRenderer(store TemplateStore, policy FallbackPolicy) *TemplateRenderer {
	return &TemplateRenderer{store: store, policy: policy}
}

// Render resolves the template body (owner customization first, built-in
// default second) and substitutes every recognized placeholder.
func (r *TemplateRenderer) Render(ownerID uuid.UUID, templateType string, data TemplateData, profile models.CompanyProfile) (string, error) {
	body, err := r.resolveBody(ownerID, templateType)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, tok := range tokenize(body) {
		if tok.name == "" {
			out.WriteString(tok.literal)
			continue
		}
		if resolve, ok := placeholderResolvers[tok.name]; ok {
			out.WriteString(resolve(data, profile))
			continue
		}
		if r.policy == FallbackKeep {
			out.WriteString("{" + tok.name + "}")
		}
	}
	return out.String(), nil
}

func (r *TemplateRenderer) resolveBody(ownerID uuid.UUID, templateType string) (string, error) {
	if ownerID != uuid.Nil {
		template, err := r.store.ActiveTemplate(ownerID, templateType)
		if err == nil {
			return template.Body, nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnauthenticated) {
			return "", err
		}
	}

	body, ok := defaultTemplates[templateType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templateType)
	}
	return body, nil
}

type token struct {
	literal string
	name    string // non-empty means a placeholder slot
}

// tokenize splits a body into literal runs and named slots. Anything between
// braces that is not a lowercase identifier stays literal.
func tokenize(body string) []token {
	var tokens []token
	for len(body) > 0 {
		open := strings.IndexByte(body, '{')
		if open < 0 {
			tokens = append(tokens, token{literal: body})
			break
		}
		end := strings.IndexByte(body[open:], '}')
		if end < 0 {
			tokens = append(tokens, token{literal: body})
			break
		}
		end += open
		name := body[open+1 : end]
		if !isPlaceholderName(name) {
			tokens = append(tokens, token{literal: body[:open+1]})
			body = body[open+1:]
			continue
		}
		if open > 0 {
			tokens = append(tokens, token{literal: body[:open]})
		}
		tokens = append(tokens, token{name: name})
		body = body[end+1:]
	}
	return tokens
}

func isPlaceholderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

type resolverFunc func(d TemplateData, p models.CompanyProfile) string

// The fixed placeholder vocabulary. Each entry is replaced independently
// wherever it occurs in the body.
var placeholderResolvers = map[string]resolverFunc{
	"cliente":     func(d TemplateData, p models.CompanyProfile) string { return d.CustomerName },
	"instrumento": func(d TemplateData, p models.CompanyProfile) string { return d.InstrumentName },
	"marca":       func(d TemplateData, p models.CompanyProfile) string { return d.Brand },
	"modelo":      func(d TemplateData, p models.CompanyProfile) string { return d.ModelName },
	"numero":      func(d TemplateData, p models.CompanyProfile) string { return d.OrderNumber },
	"acessorios":  func(d TemplateData, p models.CompanyProfile) string { return d.Accessories },
	"problemas":   func(d TemplateData, p models.CompanyProfile) string { return d.Problems },
	"servicos": func(d TemplateData, p models.CompanyProfile) string {
		if len(d.Services) == 0 {
			return "Diagnóstico e orçamento"
		}
		return strings.Join(d.Services, ", ")
	},
	"valor": func(d TemplateData, p models.CompanyProfile) string {
		return formatAmount(d.TotalAmount)
	},
	"valor_orcamento": func(d TemplateData, p models.CompanyProfile) string {
		return formatAmount(d.EstimateAmount)
	},
	"valor_pendente": func(d TemplateData, p models.CompanyProfile) string {
		if d.PendingAmount == nil {
			return "R$ 0,00"
		}
		return formatMoney(*d.PendingAmount)
	},
	"forma_pagamento": func(d TemplateData, p models.CompanyProfile) string {
		return paymentMethodLabel(d.PaymentMethod)
	},
	"data_criacao": func(d TemplateData, p models.CompanyProfile) string {
		if d.OrderDate == nil {
			return ""
		}
		return utils.FormatDateBR(*d.OrderDate)
	},
	"previsao_entrega": func(d TemplateData, p models.CompanyProfile) string {
		if d.DeliveryEstimate == nil {
			return "A definir"
		}
		return utils.FormatDateBR(*d.DeliveryEstimate)
	},
	"observacoes": func(d TemplateData, p models.CompanyProfile) string {
		if strings.TrimSpace(d.Notes) == "" {
			return ""
		}
		return "Observações: " + d.Notes
	},
	"ultimo_servico": func(d TemplateData, p models.CompanyProfile) string {
		if d.LastServiceDate == nil {
			return ""
		}
		return utils.FormatDateBR(*d.LastServiceDate)
	},
	"meses_sem_manutencao": func(d TemplateData, p models.CompanyProfile) string {
		return strconv.Itoa(d.MonthsWithoutService)
	},
	"dias_prontos": func(d TemplateData, p models.CompanyProfile) string {
		return strconv.Itoa(d.DaysReady)
	},
	"google_review_link": func(d TemplateData, p models.CompanyProfile) string { return d.ReviewLink },
	"instagram_handle":   func(d TemplateData, p models.CompanyProfile) string { return d.InstagramHandle },

	"nome_empresa":          func(d TemplateData, p models.CompanyProfile) string { return p.Name },
	"telefone_empresa":      func(d TemplateData, p models.CompanyProfile) string { return p.Phone },
	"endereco_empresa":      func(d TemplateData, p models.CompanyProfile) string { return p.Address },
	"horario_funcionamento": func(d TemplateData, p models.CompanyProfile) string { return p.Hours },
	"dias_funcionamento":    func(d TemplateData, p models.CompanyProfile) string { return p.Days },
	"cnpj":                  func(d TemplateData, p models.CompanyProfile) string { return p.CNPJ },
}

// formatMoney renders "R$ 150,50" style amounts.
func formatMoney(value float64) string {
	return "R$ " + strings.Replace(strconv.FormatFloat(value, 'f', 2, 64), ".", ",", 1)
}

func formatAmount(value *float64) string {
	if value == nil {
		return "A definir"
	}
	return formatMoney(*value)
}

var paymentMethodLabels = map[string]string{
	"credit":   "Cartão de Crédito",
	"debit":    "Cartão de Débito",
	"pix":      "PIX",
	"cash":     "Dinheiro",
	"transfer": "Transferência Bancária",
}

// paymentMethodLabel maps the stored payment method to its display name.
// Unmapped values pass through verbatim.
func paymentMethodLabel(method string) string {
	if method == "" {
		return "A definir"
	}
	if label, ok := paymentMethodLabels[method]; ok {
		return label
	}
	return method
}

// Template types recognized by the pipeline.
const (
	TemplateNewOrder    = "nova_ordem"
	TemplateOrderReady  = "ordem_concluida"
	TemplateMaintenance = "maintenance_reminder"
	TemplateEvaluation  = "evaluation_google_instagram"
)

var defaultTemplates = map[string]string{
	TemplateNewOrder: `Olá {cliente}!

Recebemos seu {instrumento} {marca} {modelo} para manutenção.

*Ordem de Serviço:* {numero}
*Serviços:* {servicos}
*Problemas relatados:* {problemas}
*Acessórios:* {acessorios}
*Valor:* {valor}
*Forma de pagamento:* {forma_pagamento}
*Entrada:* {data_criacao}
*Previsão de entrega:* {previsao_entrega}
{observacoes}

{nome_empresa}
{telefone_empresa}
{endereco_empresa}
Atendimento: {dias_funcionamento}, {horario_funcionamento}`,

	TemplateOrderReady: `Boas notícias, {cliente}!

Seu {instrumento} {marca} {modelo} está pronto (OS {numero}).

*Serviços realizados:* {servicos}
*Valor pendente:* {valor_pendente}

Retirada em {endereco_empresa}, {dias_funcionamento} das {horario_funcionamento}.

{nome_empresa}
{telefone_empresa}`,

	TemplateMaintenance: `Olá {cliente}! Tudo bem?

Já se passaram {meses_sem_manutencao} meses desde a última manutenção do seu {instrumento} {marca}, realizada em {ultimo_servico}.

Que tal agendar uma revisão preventiva? Instrumento revisado toca melhor e dura mais.

{nome_empresa}
{telefone_empresa}
Atendimento: {dias_funcionamento}, {horario_funcionamento}`,

	TemplateEvaluation: `Olá {cliente}! Seu {instrumento} {marca} foi entregue há {dias_prontos} dias (OS {numero}).

Sua opinião é muito importante para nós. Avalie nosso trabalho no Google: {google_review_link}

E siga a gente no Instagram: {instagram_handle}

Obrigado pela confiança!
{nome_empresa}`,
}
