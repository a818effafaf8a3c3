package handler

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

const maxFilterLength = 100

// parseListQuery reads page, limit, sort, fields and field filters. A
// repeated parameter resolves to its last value. Numbers that do not parse
// are left at zero for the store to default.
func parseListQuery(values url.Values) (ports.ListUsersQuery, error) {
	q := ports.ListUsersQuery{Filters: map[string]string{}}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := strings.TrimSpace(vals[len(vals)-1])

		switch key {
		case "page":
			q.Page = positiveInt(v)
		case "limit":
			q.Limit = positiveInt(v)
		case "sort":
			sort, err := parseSort(v)
			if err != nil {
				return ports.ListUsersQuery{}, err
			}
			q.Sort = sort
		case "fields", "select":
			fields, err := parseFields(v)
			if err != nil {
				return ports.ListUsersQuery{}, err
			}
			q.Fields = fields
		default:
			if !domain.IsFilterableField(key) {
				return ports.ListUsersQuery{}, domain.NewValidationError("Invalid filter field: " + key)
			}
			if v == "" {
				continue
			}
			if utf8.RuneCountInString(v) > maxFilterLength {
				return ports.ListUsersQuery{}, domain.NewValidationError("Filter value for " + key + " is too long")
			}
			q.Filters[key] = v
		}
	}
	return q, nil
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// parseSort keeps the first occurrence of a repeated field.
func parseSort(s string) ([]ports.SortField, error) {
	var out []ports.SortField
	seen := map[string]bool{}
	for _, part := range splitList(s) {
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if !domain.IsSelectableField(field) {
			return nil, domain.NewValidationError("Invalid sort field: " + field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, ports.SortField{Field: field, Desc: desc})
	}
	return out, nil
}

func parseFields(s string) ([]string, error) {
	var out []string
	for _, field := range splitList(s) {
		if !domain.IsSelectableField(field) {
			return nil, domain.NewValidationError("Invalid select field: " + field)
		}
		out = append(out, field)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
