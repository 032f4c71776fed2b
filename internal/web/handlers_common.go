package web

// handlers_common.go contains shared request parsing and response helpers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// maxJSONBody bounds JSON bodies that are not imports.
const maxJSONBody = 1 << 20

// errInvalidRequest wraps malformed input; MapError resolves it to VAL004.
var errInvalidRequest = errors.New("invalid request")

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

// writeJSON encodes v as JSON with status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

func jsonDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := jsonDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return invalidRequest("decode body: %v", err)
	}
	return nil
}

// leadIDParam parses the {id} route parameter as a lead id.
func leadIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidRequest("lead id %q", raw)
	}
	return id, nil
}

// campaignIDParam parses the {id} route parameter as a campaign id.
func campaignIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidRequest("campaign id %q", raw)
	}
	return id, nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

const (
	// statusAll is the status filter value that lists every status.
	statusAll = "all"
	// maxPage bounds the page number so the offset cannot overflow. Any
	// page past the data returns no leads.
	maxPage = 1_000_000
)

// parsePage reads the 1-based page number capped at maxPage. A positive
// number too large for an int counts as maxPage.
func parsePage(r *http.Request) int {
	val := r.URL.Query().Get("page")
	if val == "" {
		return 1
	}
	i, err := strconv.Atoi(val)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(val, "-") {
		return maxPage
	}
	if err != nil || i < 1 {
		return 1
	}
	return min(i, maxPage)
}

// parseLeadQuery reads search, status, campaign, sort, dir, page and
// page_size. Pages are 1-based.
func parseLeadQuery(r *http.Request) (core.LeadQuery, error) {
	q := r.URL.Query()
	lq := core.LeadQuery{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Desc:   strings.EqualFold(q.Get("dir"), "desc"),
	}

	if raw := q.Get("status"); raw != "" && !strings.EqualFold(raw, statusAll) {
		st, err := core.ParseLeadStatus(raw)
		if err != nil {
			return core.LeadQuery{}, err
		}
		lq.Status = st
	}
	if raw := q.Get("campaign"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return core.LeadQuery{}, invalidRequest("campaign %q", raw)
		}
		lq.CampaignID = &id
	}

	pageSize := min(parseIntParam(r, "page_size", core.DefaultPageSize), core.MaxPageSize)
	page := parsePage(r)
	lq.Limit = pageSize
	lq.Offset = (page - 1) * pageSize
	return lq, nil
}

// parseMapping validates user-supplied header to field pairs. An empty
// field leaves the header unmapped.
func parseMapping(raw map[string]string) (core.FieldMapping, error) {
	m := core.FieldMapping{}
	for header, key := range raw {
		var err error
		if m, err = m.Set(header, core.FieldKey(key)); err != nil {
			return nil, err
		}
	}
	return m, nil
}
