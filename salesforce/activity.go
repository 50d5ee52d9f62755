// ABOUTME: Activity merge engine deriving last-contact dates
// ABOUTME: Batched fan-out over task/event aggregates, max-merged per opportunity
package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/fiveyard/models"
)

// activityBatchSize bounds the IN-list of each aggregate query so a large
// sync never builds an oversized predicate.
const activityBatchSize = 50

// activitySignals accumulates the four independent contact signals across
// all batches, keyed by opportunity or account id.
type activitySignals struct {
	mu          sync.Mutex
	taskByOpp   map[string]time.Time
	eventByOpp  map[string]time.Time
	taskByAcct  map[string]time.Time
	eventByAcct map[string]time.Time
}

func newActivitySignals() *activitySignals {
	return &activitySignals{
		taskByOpp:   make(map[string]time.Time),
		eventByOpp:  make(map[string]time.Time),
		taskByAcct:  make(map[string]time.Time),
		eventByAcct: make(map[string]time.Time),
	}
}

func (s *activitySignals) merge(dst map[string]time.Time, src map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range src {
		if existing, ok := dst[k]; !ok || v.After(existing) {
			dst[k] = v
		}
	}
}

// AttachLastContactDates computes each opportunity's true last contact:
// the max of the most recent task and event on the opportunity and on its
// parent account. Opportunities with no signal at all fall back to their
// last-modified timestamp. The input is not mutated; failures degrade to
// the fallback rather than surfacing an error.
func (c *Client) AttachLastContactDates(ctx context.Context, opps []models.Opportunity) []models.Opportunity {
	result := make([]models.Opportunity, len(opps))
	copy(result, opps)
	if len(result) == 0 {
		return result
	}

	signals := newActivitySignals()

	// Batches run sequentially to bound peak query load; the four
	// sub-queries within a batch fan out concurrently.
	for start := 0; start < len(result); start += activityBatchSize {
		end := start + activityBatchSize
		if end > len(result) {
			end = len(result)
		}
		c.collectBatchSignals(ctx, result[start:end], signals)
	}

	for i := range result {
		opp := &result[i]
		var latest *time.Time
		for _, candidate := range []map[string]time.Time{signals.taskByOpp, signals.eventByOpp} {
			if ts, ok := candidate[opp.SFID]; ok && (latest == nil || ts.After(*latest)) {
				t := ts
				latest = &t
			}
		}
		if validAccountID(opp.AccountID) {
			for _, candidate := range []map[string]time.Time{signals.taskByAcct, signals.eventByAcct} {
				if ts, ok := candidate[opp.AccountID]; ok && (latest == nil || ts.After(*latest)) {
					t := ts
					latest = &t
				}
			}
		}

		if latest != nil {
			opp.LastContactDate = latest
		} else {
			t := opp.LastModifiedDate
			opp.LastContactDate = &t
		}
	}
	return result
}

// collectBatchSignals issues the four aggregate queries for one batch.
// A failed sub-query contributes nothing for this batch and is never
// fatal to the merge.
func (c *Client) collectBatchSignals(ctx context.Context, batch []models.Opportunity, signals *activitySignals) {
	oppIDs := make([]string, 0, len(batch))
	acctSeen := make(map[string]bool)
	var acctIDs []string
	for _, opp := range batch {
		oppIDs = append(oppIDs, opp.SFID)
		// Sentinel account ids would build a malformed predicate; filter
		// them out instead of issuing the query.
		if validAccountID(opp.AccountID) && !acctSeen[opp.AccountID] {
			acctSeen[opp.AccountID] = true
			acctIDs = append(acctIDs, opp.AccountID)
		}
	}

	type subQuery struct {
		object string
		key    string
		ids    []string
		dst    map[string]time.Time
	}
	queries := []subQuery{
		{"Task", "WhatId", oppIDs, signals.taskByOpp},
		{"Event", "WhatId", oppIDs, signals.eventByOpp},
		{"Task", "AccountId", acctIDs, signals.taskByAcct},
		{"Event", "AccountId", acctIDs, signals.eventByAcct},
	}

	var wg sync.WaitGroup
	for _, q := range queries {
		if len(q.ids) == 0 {
			continue
		}
		wg.Add(1)
		go func(q subQuery) {
			defer wg.Done()
			latest, err := c.aggregateLatest(ctx, q.object, q.key, q.ids)
			if err != nil {
				c.log.WithError(err).WithFields(map[string]interface{}{
					"object": q.object,
					"key":    q.key,
				}).Warn("activity sub-query failed, treating signal as empty for batch")
				return
			}
			signals.merge(q.dst, latest)
		}(q)
	}
	wg.Wait()
}

// aggregateLatest runs one grouped MAX(CreatedDate) query and returns a
// key -> timestamp map.
func (c *Client) aggregateLatest(ctx context.Context, object, keyField string, ids []string) (map[string]time.Time, error) {
	soql := fmt.Sprintf(
		"SELECT %s, MAX(CreatedDate) latest FROM %s WHERE %s IN (%s) GROUP BY %s",
		keyField, object, keyField, quoteSOQLIDs(ids), keyField)

	result, err := c.runQuery(ctx, soql)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]time.Time, len(result.Records))
	for _, raw := range result.Records {
		key, ts, err := parseAggregateRecord(raw, keyField)
		if err != nil {
			return nil, &QueryError{Op: "parse aggregate record", Err: err}
		}
		latest[key] = ts
	}
	return latest, nil
}

func parseAggregateRecord(raw json.RawMessage, keyField string) (string, time.Time, error) {
	var rec map[string]interface{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", time.Time{}, err
	}
	key, _ := rec[keyField].(string)
	if key == "" {
		return "", time.Time{}, fmt.Errorf("aggregate record missing %s", keyField)
	}
	latestStr, _ := rec["latest"].(string)
	ts, err := time.Parse(sfDateTimeLayout, latestStr)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad latest value %q: %w", latestStr, err)
	}
	return key, ts, nil
}

func validAccountID(id string) bool {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", "null", "undefined":
		return false
	}
	return true
}

func quoteSOQLIDs(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		escaped := strings.ReplaceAll(id, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `'`, `\'`)
		quoted[i] = "'" + escaped + "'"
	}
	return strings.Join(quoted, ", ")
}
