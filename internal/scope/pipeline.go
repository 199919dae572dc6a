package scope

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lodgera/accesscore/internal/authz"
)

// ScopePipeline returns pipeline with an establishment-equality $match
// stage prepended when the context requires scoping. If the first stage
// already constrains by establishment the pipeline is returned unchanged:
// scoping is idempotent and never narrows an intentionally broader query
// twice. Unrestricted and bootstrap contexts pass through unchanged.
func ScopePipeline(ac authz.Context, pipeline mongo.Pipeline) mongo.Pipeline {
	if ac.CanAccessAll() {
		return pipeline
	}
	est, ok := ac.EstablishmentID()
	if !ok {
		return pipeline
	}
	if len(pipeline) > 0 && matchConstrainsEstablishment(pipeline[0]) {
		return pipeline
	}
	scoped := make(mongo.Pipeline, 0, len(pipeline)+1)
	scoped = append(scoped, bson.D{{Key: "$match", Value: bson.D{{Key: authz.FilterKey, Value: est}}}})
	scoped = append(scoped, pipeline...)
	return scoped
}

// matchConstrainsEstablishment reports whether stage is a $match stage
// whose predicate mentions the establishment field.
func matchConstrainsEstablishment(stage bson.D) bool {
	for _, elem := range stage {
		if elem.Key != "$match" {
			continue
		}
		switch pred := elem.Value.(type) {
		case bson.D:
			for _, p := range pred {
				if p.Key == authz.FilterKey {
					return true
				}
			}
		case bson.M:
			if _, ok := pred[authz.FilterKey]; ok {
				return true
			}
		}
	}
	return false
}
