package httptransport

import (
	"time"

	"vouch/internal/directory"
	"vouch/internal/login"
	"vouch/internal/verification/models"
)

// VerificationResponse is the JSON rendering of a verification record.
type VerificationResponse struct {
	ID           int64     `json:"id"`
	SourceUID    string    `json:"source_uid"`
	SourceName   string    `json:"source_name"`
	DestUID      string    `json:"dest_uid"`
	DestName     string    `json:"dest_name"`
	SharedSecret string    `json:"shared_secret"`
	Phonetic     string    `json:"phonetic"`
	Expiry       time.Time `json:"expiry"`
	ExpiresIn    string    `json:"expires_in"`
	Reciprocated bool      `json:"reciprocated"`
}

func fromRecord(r *models.Record) VerificationResponse {
	return VerificationResponse{
		ID:           r.ID,
		SourceUID:    r.SourceUID,
		SourceName:   r.SourceName,
		DestUID:      r.DestUID,
		DestName:     r.DestName,
		SharedSecret: r.SharedSecret,
		Phonetic:     r.Phonetic,
		Expiry:       r.Expiry,
		ExpiresIn:    r.ExpiresIn,
		Reciprocated: r.Reciprocated,
	}
}

func fromRecords(records []models.Record) []VerificationResponse {
	out := make([]VerificationResponse, len(records))
	for i := range records {
		out[i] = fromRecord(&records[i])
	}
	return out
}

// VerificationListResponse groups a user's unexpired records by direction,
// mirroring the two tables of the landing page.
type VerificationListResponse struct {
	AsSource      []VerificationResponse `json:"as_source"`
	AsDestination []VerificationResponse `json:"as_destination"`
}

// VerificationHistoryResponse lists every record involving the user,
// including expired ones.
type VerificationHistoryResponse struct {
	History []VerificationResponse `json:"history"`
}

// LoginResponse confirms a successful login.
type LoginResponse struct {
	Username string `json:"username"`
}

// FieldResponse describes one login form input.
type FieldResponse struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Secret      bool   `json:"secret"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// FieldsResponse lists the login form inputs. Warning is set when the
// configured provider performs no real credential verification.
type FieldsResponse struct {
	Fields  []FieldResponse `json:"fields"`
	Warning bool            `json:"warning"`
}

func fromFields(fields []login.Field, productionReady bool) FieldsResponse {
	out := FieldsResponse{
		Fields:  make([]FieldResponse, len(fields)),
		Warning: !productionReady,
	}
	for i, f := range fields {
		out.Fields[i] = FieldResponse{
			Name:        f.Name,
			Label:       f.Label,
			Secret:      f.Secret,
			Required:    f.Required,
			Description: f.Description,
		}
	}
	return out
}

// SearchResponse carries directory search results. Each result is an
// attribute tuple ordered like AttributeNames.
type SearchResponse struct {
	AttributeNames []string   `json:"attribute_names"`
	Results        [][]string `json:"results"`
}

func fromPeople(people []directory.Person, attributeNames []string) SearchResponse {
	out := SearchResponse{
		AttributeNames: attributeNames,
		Results:        make([][]string, len(people)),
	}
	for i, p := range people {
		out.Results[i] = p.Attributes
	}
	return out
}
