package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MarcGrol/courseshop/lib/myhttpclient"
	"github.com/MarcGrol/courseshop/lib/mylog"
)

type httpDirectory struct {
	baseURL    string
	serviceKey string
	sender     myhttpclient.HTTPSender
	logger     mylog.Logger
}

// NewHTTPDirectory talks to the admin API of the hosted auth backend at baseURL.
func NewHTTPDirectory(baseURL string, serviceKey string, sender myhttpclient.HTTPSender) Directory {
	return &httpDirectory{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		sender:     sender,
		logger:     mylog.New("accounts"),
	}
}

type inviteRequest struct {
	Email string     `json:"email"`
	Data  Attributes `json:"data"`
}

type inviteResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Code      any    `json:"code"`
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
}

func (e errorResponse) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

func (d *httpDirectory) Invite(c context.Context, email string, attributes Attributes) (Account, error) {
	body, err := json.Marshal(inviteRequest{Email: email, Data: attributes})
	if err != nil {
		return Account{}, fmt.Errorf("error marshalling invite: %s", err)
	}

	status, respBody, err := d.sender.Send(c, http.MethodPost, d.baseURL+"/auth/v1/invite", map[string]string{
		"apikey":        d.serviceKey,
		"Authorization": "Bearer " + d.serviceKey,
	}, body)
	if err != nil {
		return Account{}, fmt.Errorf("error inviting %s: %w", email, err)
	}

	if status >= 200 && status < 300 {
		resp := inviteResponse{}
		err = json.Unmarshal(respBody, &resp)
		if err != nil {
			return Account{}, fmt.Errorf("error parsing invite response: %s", err)
		}
		if resp.ID == "" {
			return Account{}, fmt.Errorf("invite response without account id")
		}
		return Account{ID: resp.ID, Email: resp.Email}, nil
	}

	errResp := errorResponse{}
	_ = json.Unmarshal(respBody, &errResp)

	if isConflict(status, errResp) {
		d.logger.Log(c, email, mylog.SeverityInfo, "Account for %s already exists: %s", email, errResp.text())
		return Account{}, fmt.Errorf("error inviting %s: %w", email, ErrAccountExists)
	}

	return Account{}, fmt.Errorf("error inviting %s: http-status %d: %s", email, status, errResp.text())
}

func isConflict(status int, resp errorResponse) bool {
	if status != http.StatusUnprocessableEntity && status != http.StatusConflict && status != http.StatusBadRequest {
		return false
	}
	if resp.ErrorCode == "email_exists" || resp.ErrorCode == "user_already_exists" {
		return true
	}
	return strings.Contains(strings.ToLower(resp.text()), "already")
}
