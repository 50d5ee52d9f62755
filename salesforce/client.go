// ABOUTME: Salesforce REST client with lazy session auth and SOQL queries
// ABOUTME: Fetches opportunities and applies source-boundary exclusions
package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/harperreed/fiveyard/models"
)

const (
	// Remote timestamps use a fixed-offset layout; close dates are bare dates.
	sfDateTimeLayout = "2006-01-02T15:04:05.000-0700"
	sfDateLayout     = "2006-01-02"

	fetchLimit     = 1000
	requestTimeout = 30 * time.Second
)

// Config holds the remote-source credentials and endpoint. The API
// version is pinned; exclusions are business policy applied at this
// boundary, not per-request options.
type Config struct {
	LoginURL       string
	ClientID       string
	ClientSecret   string
	Username       string
	Password       string
	SecurityToken  string
	APIVersion     string
	ExcludedOwners []string
}

// Client talks to the Salesforce REST API. It authenticates lazily on
// first use and caches the session for the process lifetime.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logrus.Entry

	mu          sync.Mutex
	token       *oauth2.Token
	instanceURL string
}

// NewClient builds an unauthenticated client. No network traffic happens
// until the first query.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "59.0"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log.WithField("component", "salesforce"),
	}
}

// ensureSession returns the cached session, logging in on first use via
// the username-password grant (security token appended per Salesforce
// convention). A process restart is the only way to force re-auth.
func (c *Client) ensureSession(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, c.instanceURL, nil
	}

	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: strings.TrimRight(c.cfg.LoginURL, "/") + "/services/oauth2/token",
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.PasswordCredentialsToken(ctx, c.cfg.Username, c.cfg.Password+c.cfg.SecurityToken)
	if err != nil {
		return "", "", &AuthError{Op: "salesforce login", Err: err}
	}

	instanceURL, _ := token.Extra("instance_url").(string)
	if instanceURL == "" {
		return "", "", &AuthError{Op: "salesforce login", Err: fmt.Errorf("token response missing instance_url")}
	}

	c.token = token
	c.instanceURL = instanceURL
	c.log.WithField("instance", instanceURL).Info("authenticated to Salesforce")
	return token.AccessToken, instanceURL, nil
}

type queryResult struct {
	TotalSize int               `json:"totalSize"`
	Done      bool              `json:"done"`
	Records   []json.RawMessage `json:"records"`
}

// runQuery executes one SOQL query against the cached session.
func (c *Client) runQuery(ctx context.Context, soql string) (*queryResult, error) {
	accessToken, instanceURL, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/services/data/v%s/query?q=%s",
		instanceURL, c.cfg.APIVersion, url.QueryEscape(soql))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &QueryError{Op: "build query request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &QueryError{Op: "execute query", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &QueryError{
			Op:  "execute query",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var result queryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &QueryError{Op: "decode query response", Err: err}
	}
	return &result, nil
}

type opportunityRecord struct {
	ID               string   `json:"Id"`
	Name             string   `json:"Name"`
	StageName        string   `json:"StageName"`
	Amount           *float64 `json:"Amount"`
	CreatedDate      string   `json:"CreatedDate"`
	LastModifiedDate string   `json:"LastModifiedDate"`
	CloseDate        *string  `json:"CloseDate"`
	NextStep         *string  `json:"NextStep"`
	Description      *string  `json:"Description"`
	AccountID        *string  `json:"AccountId"`
	Owner            *struct {
		Name string `json:"Name"`
	} `json:"Owner"`
	Account *struct {
		Name  string  `json:"Name"`
		Phone *string `json:"Phone"`
	} `json:"Account"`
}

// FetchOpportunities pulls the most recently modified opportunities and
// applies the standing exclusion policy. Any auth or query error aborts
// the fetch; no partial result is returned.
func (c *Client) FetchOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	soql := fmt.Sprintf(`SELECT Id, Name, StageName, Amount, CreatedDate, LastModifiedDate, `+
		`CloseDate, NextStep, Description, AccountId, Owner.Name, Account.Name, Account.Phone `+
		`FROM Opportunity ORDER BY LastModifiedDate DESC LIMIT %d`, fetchLimit)

	result, err := c.runQuery(ctx, soql)
	if err != nil {
		return nil, err
	}

	opps := make([]models.Opportunity, 0, len(result.Records))
	excluded := 0
	for _, raw := range result.Records {
		var rec opportunityRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &QueryError{Op: "decode opportunity record", Err: err}
		}

		ownerName := ""
		if rec.Owner != nil {
			ownerName = rec.Owner.Name
		}
		if c.isExcluded(rec.Name, ownerName) {
			excluded++
			continue
		}

		opp, err := rec.toModel(ownerName)
		if err != nil {
			return nil, &QueryError{Op: "parse opportunity " + rec.ID, Err: err}
		}
		opps = append(opps, *opp)
	}

	c.log.WithFields(logrus.Fields{
		"fetched":  len(result.Records),
		"excluded": excluded,
	}).Info("fetched opportunities")
	return opps, nil
}

// isExcluded applies the source-boundary policy: drop upgrade/design
// projects and every configured excluded owner.
func (c *Client) isExcluded(name, owner string) bool {
	lowerName := strings.ToLower(name)
	if strings.Contains(lowerName, "upgrade") || strings.Contains(lowerName, "design") {
		return true
	}

	lowerOwner := strings.ToLower(owner)
	for _, excluded := range c.cfg.ExcludedOwners {
		if excluded != "" && strings.Contains(lowerOwner, strings.ToLower(excluded)) {
			return true
		}
	}
	return false
}

func (r *opportunityRecord) toModel(ownerName string) (*models.Opportunity, error) {
	created, err := time.Parse(sfDateTimeLayout, r.CreatedDate)
	if err != nil {
		return nil, fmt.Errorf("bad CreatedDate %q: %w", r.CreatedDate, err)
	}
	modified, err := time.Parse(sfDateTimeLayout, r.LastModifiedDate)
	if err != nil {
		return nil, fmt.Errorf("bad LastModifiedDate %q: %w", r.LastModifiedDate, err)
	}

	opp := &models.Opportunity{
		SFID:             r.ID,
		Name:             r.Name,
		Stage:            r.StageName,
		CreatedDate:      created,
		LastModifiedDate: modified,
		OwnerName:        ownerName,
	}
	if r.Amount != nil {
		opp.Amount = *r.Amount
	}
	if r.CloseDate != nil && *r.CloseDate != "" {
		closeDate, err := time.Parse(sfDateLayout, *r.CloseDate)
		if err != nil {
			return nil, fmt.Errorf("bad CloseDate %q: %w", *r.CloseDate, err)
		}
		opp.CloseDate = &closeDate
	}
	if r.NextStep != nil {
		opp.NextStep = *r.NextStep
	}
	if r.Description != nil {
		opp.Description = *r.Description
	}
	if r.AccountID != nil {
		opp.AccountID = *r.AccountID
	}
	if r.Account != nil {
		opp.AccountName = r.Account.Name
		if r.Account.Phone != nil {
			opp.AccountPhone = *r.Account.Phone
		}
	}
	return opp, nil
}
