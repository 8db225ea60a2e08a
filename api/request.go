package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/errs"
	"github.com/go-chi/chi/v5"
)

const (
	maxPageLimit = 100
	maxOffset    = math.MaxInt32
)

// decodeJSON reads one JSON document from the (size limited) request body.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewMaxBodySizeExceededError(maxBytesErr.Limit)
		}
		return errs.NewMalformedPayloadError(err)
	}
	return nil
}

func parseID(r *http.Request, param string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidFieldError(param, "Invalid id")
	}
	return uint(id), nil
}

func queryInt(r *http.Request, name string, def, floor int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		return 0, errs.NewInvalidQueryParamError(name, fmt.Sprintf("%s must be an integer greater than or equal to %d", name, floor))
	}
	return n, nil
}

// parseLimit reads limit, capped at maxPageLimit.
func parseLimit(r *http.Request, defaultLimit int) (int, error) {
	limit, err := queryInt(r, "limit", defaultLimit, 1)
	if err != nil {
		return 0, err
	}
	return min(limit, maxPageLimit), nil
}

func parsePage(r *http.Request, defaultLimit int) (database.Page, error) {
	number, err := queryInt(r, "page", 1, 1)
	if err != nil {
		return database.Page{}, err
	}
	limit, err := parseLimit(r, defaultLimit)
	if err != nil {
		return database.Page{}, err
	}
	if _, err := pageOffset(number, limit); err != nil {
		return database.Page{}, err
	}
	return database.Page{Number: number, Limit: limit}, nil
}

// pageOffset rejects pages that start beyond maxOffset rows.
func pageOffset(number, limit int) (int, error) {
	if number-1 > maxOffset/limit {
		return 0, errs.NewInvalidQueryParamError("page", "page is too large")
	}
	return (number - 1) * limit, nil
}

// parseOffset reads offset, or derives it from page when page is present.
func parseOffset(r *http.Request, limit int) (int, error) {
	if r.URL.Query().Has("page") {
		page, err := queryInt(r, "page", 1, 1)
		if err != nil {
			return 0, err
		}
		return pageOffset(page, limit)
	}
	offset, err := queryInt(r, "offset", 0, 0)
	if err != nil {
		return 0, err
	}
	if offset > maxOffset {
		return 0, errs.NewInvalidQueryParamError("offset", "offset is too large")
	}
	return offset, nil
}

// parseOptionalBool returns nil when the parameter is absent.
func parseOptionalBool(r *http.Request, name string) (*bool, error) {
	switch strings.TrimSpace(r.URL.Query().Get(name)) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, errs.NewInvalidQueryParamError(name, fmt.Sprintf("%s must be true or false", name))
	}
}
