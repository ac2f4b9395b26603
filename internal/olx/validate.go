// Package olx implements the publish-readiness gate for OLX/VRSync
// marketplace listings.
package olx

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/user/feed-service/internal/entity"
	"github.com/user/feed-service/pkg/utils"
)

// Result is the gate's verdict. Errors holds every violation, in rule
// order, so a broker fixes the whole checklist in one pass instead of a
// fail-one-discover-the-next loop. Invariant: len(Errors) == 0 iff IsValid.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator runs the fixed rule set against a record and its marketplace
// metadata. Pure and deterministic; identical input yields an identical
// Result.
type Validator struct {
	allowedStates map[string]struct{}
}

// NewValidator builds a validator restricted to the given state
// abbreviations (the marketplaces OLX integration is enabled for).
func NewValidator(states []string) *Validator {
	allowed := make(map[string]struct{}, len(states))
	for _, s := range states {
		allowed[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Validator{allowedStates: allowed}
}

// Validate evaluates every rule and collects every violation; no rule
// short-circuits.
func (v *Validator) Validate(rec entity.PropertyRecord, meta entity.OlxListingMetadata) Result {
	var errs []string

	titleLen := utf8.RuneCountInString(strings.TrimSpace(rec.Title))
	if titleLen < 10 {
		errs = append(errs, "Título muito curto (mínimo 10 caracteres)")
	} else if titleLen > 100 {
		errs = append(errs, "Título muito longo (máximo 100 caracteres)")
	}

	descLen := utf8.RuneCountInString(strings.TrimSpace(rec.Description))
	if descLen < 50 {
		errs = append(errs, "Descrição muito curta (mínimo 50 caracteres)")
	} else if descLen > 3000 {
		errs = append(errs, "Descrição muito longa (máximo 3000 caracteres)")
	}

	if rec.Price <= 0 {
		errs = append(errs, "Preço deve ser maior que zero")
	}

	if _, ok := v.allowedStates[strings.ToUpper(deref(meta.StateAbbr))]; !ok {
		errs = append(errs, "Estado não disponível para publicação no OLX")
	}

	if utf8.RuneCountInString(strings.TrimSpace(rec.City)) < 2 {
		errs = append(errs, "Cidade é obrigatória")
	}

	if utf8.RuneCountInString(strings.TrimSpace(rec.Neighborhood)) < 3 {
		errs = append(errs, "Bairro é obrigatório (mínimo 3 caracteres)")
	}

	if utf8.RuneCountInString(strings.TrimSpace(rec.Address)) < 5 {
		errs = append(errs, "Endereço é obrigatório (mínimo 5 caracteres)")
	}

	if strings.TrimSpace(deref(meta.StreetNumber)) == "" {
		errs = append(errs, "Número do imóvel é obrigatório")
	}

	if len(utils.Digits(deref(meta.PostalCode))) != 8 {
		errs = append(errs, "CEP deve ter 8 dígitos")
	}

	if meta.LivingAreaM2 == nil || *meta.LivingAreaM2 <= 0 {
		errs = append(errs, "Área útil deve ser maior que zero")
	}

	// Residential listings must declare at least one bedroom. Judged on the
	// record's classification, not on keywords in the city field.
	if rec.PropertyType.Residential() && rec.Bedrooms < 1 {
		errs = append(errs, "Imóveis residenciais devem ter ao menos 1 quarto")
	}

	if utf8.RuneCountInString(strings.TrimSpace(deref(meta.ContactName))) < 3 {
		errs = append(errs, "Nome de contato é obrigatório (mínimo 3 caracteres)")
	}

	if !emailPattern.MatchString(deref(meta.ContactEmail)) {
		errs = append(errs, "E-mail de contato inválido")
	}

	if len(utils.Digits(deref(meta.ContactPhone))) < 10 {
		errs = append(errs, "Telefone de contato inválido (mínimo 10 dígitos)")
	}

	if len(rec.Photos) < 1 {
		errs = append(errs, "O anúncio deve ter pelo menos 1 foto")
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
