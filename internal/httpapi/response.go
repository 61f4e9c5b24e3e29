package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lu-zhengda/aliases/internal/chat"
	"github.com/lu-zhengda/aliases/internal/domain"
)

// NameEntry is one name in a lookup response.
type NameEntry struct {
	Name      string     `json:"name"`
	ChangedAt *time.Time `json:"changed_at,omitempty"`
}

// LookupResponse is the structured form of a lookup result.
type LookupResponse struct {
	Outcome   string          `json:"outcome"`
	Username  string          `json:"username"`
	AccountID string          `json:"account_id,omitempty"`
	UUID      string          `json:"uuid,omitempty"`
	Status    int             `json:"status,omitempty"`
	Current   *NameEntry      `json:"current,omitempty"`
	Previous  []NameEntry     `json:"previous,omitempty"`
	Message   json.RawMessage `json:"message"`
}

// NewLookupResponse builds the response for res. Message carries the chat
// component exactly as a game client would receive it.
func NewLookupResponse(res domain.LookupResult, opts chat.ReportOptions) (LookupResponse, error) {
	msg, err := chat.Report(res, opts).MarshalJSON()
	if err != nil {
		return LookupResponse{}, fmt.Errorf("failed to encode message: %w", err)
	}

	resp := LookupResponse{
		Outcome:   res.Outcome.String(),
		Username:  res.Username,
		AccountID: res.AccountID.String(),
		Status:    res.StatusCode,
		Message:   msg,
	}
	if u, ok := res.AccountID.UUID(); ok {
		resp.UUID = u.String()
	}
	if !res.OK() {
		return resp, nil
	}

	resp.Current = &NameEntry{Name: res.History.Current.Name, ChangedAt: res.History.Current.ChangedAt}
	previous := res.History.Previous
	if opts.Order == chat.NewestFirst {
		previous = res.History.NewestFirst()
	}
	resp.Previous = make([]NameEntry, 0, len(previous))
	for _, rec := range previous {
		resp.Previous = append(resp.Previous, NameEntry{Name: rec.Name, ChangedAt: rec.ChangedAt})
	}
	return resp, nil
}

// HTTPStatus maps an outcome to the status code the API answers with.
func HTTPStatus(o domain.Outcome) int {
	switch o {
	case domain.OutcomeReport:
		return http.StatusOK
	case domain.OutcomeInvalidUsername:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
