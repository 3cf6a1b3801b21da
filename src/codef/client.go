package codef

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jandon-server/src/models"
	"jandon-server/src/util"
)

// RawTransaction is one entry of the provider's transaction list, fields named
// after the CODEF response. Amounts are decimal strings; empty means zero.
type RawTransaction struct {
	TrDate       string `json:"resAccountTrDate"`
	TrTime       string `json:"resAccountTrTime"`
	Out          string `json:"resAccountOut"`
	In           string `json:"resAccountIn"`
	Desc1        string `json:"resAccountDesc1"`
	Desc2        string `json:"resAccountDesc2"`
	Desc3        string `json:"resAccountDesc3"`
	Desc4        string `json:"resAccountDesc4"`
	AfterBalance string `json:"resAfterTranBalance"`
}

// TransactionList is the decoded provider envelope.
type TransactionList struct {
	Result struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"result"`
	Data struct {
		TrHistoryList []RawTransaction `json:"resTrHistoryList"`
	} `json:"data"`
}

type transactionListRequest struct {
	Organization    string `json:"organization"`
	FastID          string `json:"fastId"`
	FastPassword    string `json:"fastPassword"`
	ID              string `json:"id"`
	Password        string `json:"password"`
	Account         string `json:"account"`
	AccountPassword string `json:"accountPassword"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	OrderBy         string `json:"orderBy"`
	Identity        string `json:"identity"`
	ConnectedID     string `json:"connectedId"`
}

// Client fetches account transaction lists from the CODEF FAST endpoint.
// It never touches the database; persistence belongs to the sync engine.
type Client struct {
	httpClient  *http.Client
	tokens      *TokenManager
	apiURL      string
	connectedID string
	box         *util.CredentialBox
	providerKey *util.ProviderKey
}

func NewClient(apiURL, connectedID string, tokens *TokenManager, box *util.CredentialBox, providerKey *util.ProviderKey) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokens:      tokens,
		apiURL:      apiURL,
		connectedID: connectedID,
		box:         box,
		providerKey: providerKey,
	}
}

// FetchTransactions requests the inclusive [start, end] window (YYYYMMDD) for
// one account. Stored credential ciphertexts are decrypted locally and
// re-encrypted with the provider's public key before transmission. A 401 is
// recovered once by forcing a token re-issue; any other failure propagates.
func (c *Client) FetchTransactions(ctx context.Context, start, end string, ib models.InternetBanking, acc models.Account) (*TransactionList, error) {
	bankingPassword, err := c.sealCredential(ib.BankingPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("preparing banking password: %w", err)
	}
	accountPassword, err := c.sealCredential(acc.AccountPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("preparing account password: %w", err)
	}

	body := transactionListRequest{
		Organization:    ib.InstitutionCode,
		ID:              ib.BankingID,
		Password:        bankingPassword,
		Account:         acc.AccountNumber,
		AccountPassword: accountPassword,
		StartDate:       start,
		EndDate:         end,
		OrderBy:         "0", // most recent first
		ConnectedID:     c.connectedID,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	payload := url.QueryEscape(string(raw))

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	status, respBody, err := c.post(ctx, token, payload)
	if err != nil {
		return nil, err
	}

	// Expired token: re-issue once and retry, nothing more.
	if status == http.StatusUnauthorized {
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		status, respBody, err = c.post(ctx, token, payload)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status > 299 {
		return nil, fmt.Errorf("provider returned %d: %s", status, string(respBody))
	}

	decoded, err := url.QueryUnescape(string(respBody))
	if err != nil {
		return nil, fmt.Errorf("url-decoding response: %w", err)
	}
	var list TransactionList
	if err := json.Unmarshal([]byte(decoded), &list); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &list, nil
}

func (c *Client) post(ctx context.Context, token, payload string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading provider response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// sealCredential turns a stored symmetric ciphertext into the per-call
// asymmetric form the provider expects.
func (c *Client) sealCredential(storedEnc string) (string, error) {
	plain, err := c.box.Decrypt(storedEnc)
	if err != nil {
		return "", err
	}
	return c.providerKey.Encrypt(plain)
}
