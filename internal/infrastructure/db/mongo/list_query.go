package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

// documentFields maps public field names to document keys. Anything absent
// here can never appear in a filter, sort or projection.
var documentFields = map[string]string{
	domain.FieldID:        "_id",
	domain.FieldName:      "name",
	domain.FieldUsername:  "username",
	domain.FieldEmail:     "email",
	domain.FieldRole:      "role",
	domain.FieldPhone:     "phone",
	domain.FieldAddress:   "address",
	domain.FieldCreatedAt: "createdAt",
	domain.FieldUpdatedAt: "updatedAt",
}

// buildListFilter turns field filters into case-insensitive literal substring matches.
func buildListFilter(filters map[string]string) bson.M {
	filter := bson.M{}
	for field, value := range filters {
		if !domain.IsFilterableField(field) {
			continue
		}
		filter[documentFields[field]] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
	}
	return filter
}

// buildSort keeps the requested order and appends _id so pages are stable.
func buildSort(fields []ports.SortField) bson.D {
	sort := bson.D{}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key, ok := documentFields[f.Field]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	if !seen["_id"] {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

// buildProjection selects the requested fields. The password hash is excluded
// in every case.
func buildProjection(fields []string) bson.M {
	proj := bson.M{}
	for _, f := range fields {
		key, ok := documentFields[f]
		if !ok || key == "_id" {
			continue
		}
		proj[key] = 1
	}
	if len(proj) == 0 {
		return bson.M{"passwordHash": 0}
	}
	return proj
}
