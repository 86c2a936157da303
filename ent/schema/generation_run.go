package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// GenerationRun is one generate request and its outcome.
type GenerationRun struct {
	ent.Schema
}

func (GenerationRun) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.String("test_set"),
		field.String("provider"),
		field.String("model"),
		field.Int("requested"),
		field.Int("delivered"),
		field.Int64("seed").
			Optional().
			Nillable(),
		field.Int64("duration_ms"),
		field.String("error_message").
			Default(""),
		field.Text("facts").
			Default(""),
		field.Text("questions").
			Default("[]").
			Comment("Delivered questions as JSON"),
	}
}

func (GenerationRun) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}
